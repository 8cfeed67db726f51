package orders

import (
	"errors"
	"testing"
)

func statusPtr(s Status) *Status { return &s }

func sample() []Order {
	return []Order{
		{ID: "A", Status: statusPtr(StatusPending)},
		{ID: "B", Status: statusPtr(StatusCompleted)},
		{ID: "C"},
		{ID: "D", Status: statusPtr(StatusCompleted)},
	}
}

func ids(list []Order) []string {
	out := make([]string, len(list))
	for i, o := range list {
		out[i] = o.ID
	}
	return out
}

func equalIDs(t *testing.T, got []Order, want ...string) {
	t.Helper()
	g := ids(got)
	if len(g) != len(want) {
		t.Fatalf("ids = %v, want %v", g, want)
	}
	for i := range want {
		if g[i] != want[i] {
			t.Fatalf("ids = %v, want %v", g, want)
		}
	}
}

func TestFilterAllReturnsEverythingInOrder(t *testing.T) {
	equalIDs(t, Filter(sample(), FilterAll), "A", "B", "C", "D")
}

func TestFilterConcreteStatus(t *testing.T) {
	equalIDs(t, Filter(sample(), "completed"), "B", "D")
	equalIDs(t, Filter(sample(), "pending"), "A")
	equalIDs(t, Filter(sample(), "dispatched"))
}

func TestFilterAbsentStatusOnlyMatchesAll(t *testing.T) {
	for _, label := range FilterLabels[1:] {
		for _, o := range Filter(sample(), label) {
			if o.ID == "C" {
				t.Errorf("order without status matched filter %q", label)
			}
		}
	}
}

func TestFilterScenario(t *testing.T) {
	list := []Order{
		{ID: "A", Status: statusPtr(StatusPending)},
		{ID: "B", Status: statusPtr(StatusCompleted)},
	}
	equalIDs(t, Filter(list, "completed"), "B")
}

func TestToggle(t *testing.T) {
	if got := Toggle("", "A"); got != "A" {
		t.Errorf("Toggle(\"\", A) = %q, want A", got)
	}
	if got := Toggle("A", "B"); got != "B" {
		t.Errorf("Toggle(A, B) = %q, want B", got)
	}
	if got := Toggle(Toggle("", "A"), "A"); got != "" {
		t.Errorf("double toggle = %q, want collapsed", got)
	}
}

func TestParseStatus(t *testing.T) {
	for _, s := range Statuses {
		got, err := ParseStatus(string(s))
		if err != nil || got != s {
			t.Errorf("ParseStatus(%q) = %q, %v", s, got, err)
		}
	}
	for _, bad := range []string{"", "All", "Pending", "shipped"} {
		if _, err := ParseStatus(bad); !errors.Is(err, ErrInvalidStatus) {
			t.Errorf("ParseStatus(%q) err = %v, want ErrInvalidStatus", bad, err)
		}
	}
}

func TestValidFilter(t *testing.T) {
	if !ValidFilter("All") || !ValidFilter("dispatched") {
		t.Error("expected All and dispatched to be valid filters")
	}
	if ValidFilter("all") || ValidFilter("refunded") {
		t.Error("unexpected valid filter")
	}
}

func TestStatusMessages(t *testing.T) {
	cases := map[Status]string{
		StatusDispatched: "Order Dispatched!",
		StatusCancelled:  "Order Cancelled!",
		StatusCompleted:  "Order Completed!",
		StatusProcessing: "Order Processing!",
		StatusPending:    "Order Pending!",
	}
	for s, title := range cases {
		if got := StatusMessage(s).Title; got != title {
			t.Errorf("StatusMessage(%s).Title = %q, want %q", s, got, title)
		}
	}
	if StatusMessage(StatusCancelled).Icon != "error" {
		t.Error("cancelled confirmation should use the error icon")
	}
}

func TestDisplayStatusDefaultsToPending(t *testing.T) {
	if got := (Order{}).DisplayStatus(); got != StatusPending {
		t.Errorf("DisplayStatus = %q, want pending", got)
	}
	o := Order{}.WithStatus(StatusDispatched)
	if o.DisplayStatus() != StatusDispatched {
		t.Errorf("DisplayStatus = %q, want dispatched", o.DisplayStatus())
	}
}

func TestCountByStatus(t *testing.T) {
	c := CountByStatus(sample())
	if c[FilterAll] != 4 || c["completed"] != 2 || c["pending"] != 1 || c["cancelled"] != 0 {
		t.Errorf("counts = %v", c)
	}
}

func TestDateAndLabel(t *testing.T) {
	o := Order{OrderDate: "2025-01-31T10:15:00.000Z"}
	d, ok := o.Date()
	if !ok || d.Day() != 31 {
		t.Errorf("Date() = %v, %v", d, ok)
	}
	if _, ok := (Order{OrderDate: "yesterday"}).Date(); ok {
		t.Error("expected unparsable date")
	}
	if Label("processing") != "Processing" || Label("All") != "All" {
		t.Error("Label capitalisation")
	}
	if (Order{FirstName: "Ada", LastName: "Lovelace"}).CustomerName() != "Ada Lovelace" {
		t.Error("CustomerName")
	}
}
