package assets

import (
	"fmt"
	"log"
	"net/url"
	"os"
	"strings"
	"time"

	"cloud.google.com/go/storage"
)

// GCS resolves object paths in a Cloud Storage bucket. With a signing key it
// issues V4 signed GET URLs; otherwise it returns public object URLs.
type GCS struct {
	Bucket     string
	AccessID   string
	PrivateKey []byte
	TTL        time.Duration
}

// NewGCS reads the signing key from keyFile when one is given.
func NewGCS(bucket, accessID, keyFile string, ttl time.Duration) (*GCS, error) {
	g := &GCS{Bucket: bucket, AccessID: accessID, TTL: ttl}
	if keyFile != "" {
		key, err := os.ReadFile(keyFile)
		if err != nil {
			return nil, fmt.Errorf("read gcs signing key: %w", err)
		}
		g.PrivateKey = key
	}
	return g, nil
}

func (g *GCS) URL(ref string) string {
	if ref == "" || passthrough(ref) {
		return ref
	}
	object := strings.TrimPrefix(strings.TrimPrefix(ref, "gs://"+g.Bucket+"/"), "/")
	if g.AccessID == "" || len(g.PrivateKey) == 0 {
		return g.publicURL(object)
	}
	signed, err := storage.SignedURL(g.Bucket, object, &storage.SignedURLOptions{
		Scheme:         storage.SigningSchemeV4,
		Method:         "GET",
		GoogleAccessID: g.AccessID,
		PrivateKey:     g.PrivateKey,
		// SignedURL stamps X-Goog-Date from the wall clock itself.
		Expires: time.Now().UTC().Add(g.TTL),
	})
	if err != nil {
		log.Printf("assets: sign gcs url %s: %v", object, err)
		return g.publicURL(object)
	}
	return signed
}

func (g *GCS) publicURL(object string) string {
	segs := strings.Split(object, "/")
	for i, s := range segs {
		segs[i] = url.PathEscape(s)
	}
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", g.Bucket, strings.Join(segs, "/"))
}
