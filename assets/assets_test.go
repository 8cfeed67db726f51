package assets

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"
)

func TestSanityURL(t *testing.T) {
	s := Sanity{ProjectID: "p1", Dataset: "production"}
	got := s.URL("image-Tb9Ew8CXIwaY6R1kjMvI0uRR-2000x3000-jpg")
	want := "https://cdn.sanity.io/images/p1/production/Tb9Ew8CXIwaY6R1kjMvI0uRR-2000x3000.jpg"
	if got != want {
		t.Errorf("URL = %q, want %q", got, want)
	}

	s.Width = 50
	if got := s.URL("image-abc-10x10-png"); !strings.HasSuffix(got, "abc-10x10.png?w=50&h=50&fit=crop&auto=format") {
		t.Errorf("sized URL = %q", got)
	}
}

func TestSanityURLEdgeCases(t *testing.T) {
	s := Sanity{ProjectID: "p1", Dataset: "production"}
	if got := s.URL(""); got != "" {
		t.Errorf("empty ref = %q", got)
	}
	if got := s.URL("file-abc-pdf"); got != "" {
		t.Errorf("non-image ref = %q, want empty", got)
	}
	if got := s.URL("https://example.com/a.png"); got != "https://example.com/a.png" {
		t.Errorf("absolute URL should pass through, got %q", got)
	}
}

func TestGCSPublicURL(t *testing.T) {
	g, err := NewGCS("shop-assets", "", "", time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	if got := g.URL("products/red chair.png"); got != "https://storage.googleapis.com/shop-assets/products/red%20chair.png" {
		t.Errorf("URL = %q", got)
	}
	if got := g.URL("gs://shop-assets/products/a.png"); got != "https://storage.googleapis.com/shop-assets/products/a.png" {
		t.Errorf("gs:// URL = %q", got)
	}
}

func TestGCSSignedURL(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatal(err)
	}
	pemKey := pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(key)})

	g := &GCS{
		Bucket:     "shop-assets",
		AccessID:   "signer@proj.iam.gserviceaccount.com",
		PrivateKey: pemKey,
		TTL:        10 * time.Minute,
	}
	got := g.URL("products/a.png")
	if !strings.HasPrefix(got, "https://storage.googleapis.com/shop-assets/products/a.png?") {
		t.Fatalf("signed URL = %q", got)
	}
	for _, p := range []string{"X-Goog-Algorithm=GOOG4-RSA-SHA256", "X-Goog-Signature="} {
		if !strings.Contains(got, p) {
			t.Errorf("signed URL missing %s: %q", p, got)
		}
	}
	u, err := url.Parse(got)
	if err != nil {
		t.Fatal(err)
	}
	// Whole seconds between our clock read and the signer's, so 599 or 600.
	exp, err := strconv.Atoi(u.Query().Get("X-Goog-Expires"))
	if err != nil || exp < 599 || exp > 600 {
		t.Errorf("X-Goog-Expires = %q, want 600 (+/-1s)", u.Query().Get("X-Goog-Expires"))
	}
}

func TestSanityURLWithoutProject(t *testing.T) {
	s := Sanity{Dataset: "production"}
	if got := s.URL("image-abc-100x100-png"); got != "" {
		t.Errorf("URL without project = %q, want empty", got)
	}
	if got := s.URL("https://example.com/a.png"); got != "https://example.com/a.png" {
		t.Errorf("absolute URL = %q", got)
	}
}

func TestResolverFunc(t *testing.T) {
	var r Resolver = ResolverFunc(func(ref string) string { return "/img/" + ref })
	if r.URL("x") != "/img/x" {
		t.Error("ResolverFunc")
	}
}
