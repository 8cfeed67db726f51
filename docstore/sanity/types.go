package sanity

import "encoding/json"

type queryResponse struct {
	Ms     int             `json:"ms"`
	Query  string          `json:"query"`
	Result json.RawMessage `json:"result"`
}

type mutateRequest struct {
	Mutations []Mutation `json:"mutations"`
}

// Mutation is one entry of a mutate transaction. Exactly one field is set.
type Mutation struct {
	Patch  *Patch     `json:"patch,omitempty"`
	Delete *DeleteDoc `json:"delete,omitempty"`
}

type Patch struct {
	ID  string         `json:"id"`
	Set map[string]any `json:"set,omitempty"`
}

type DeleteDoc struct {
	ID string `json:"id"`
}

type MutateResponse struct {
	TransactionID string           `json:"transactionId"`
	Results       []MutationResult `json:"results"`
}

type MutationResult struct {
	ID        string `json:"id"`
	Operation string `json:"operation"` // "update", "delete", ...
}

type errorResponse struct {
	Error struct {
		Description string `json:"description"`
		Type        string `json:"type"`
	} `json:"error"`
}

func SetPatch(id string, fields map[string]any) Mutation {
	return Mutation{Patch: &Patch{ID: id, Set: fields}}
}

func DeleteMutation(id string) Mutation {
	return Mutation{Delete: &DeleteDoc{ID: id}}
}
