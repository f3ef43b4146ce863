package ref

import (
	"strings"
	"testing"
)

func TestEncodeDefaultsTag(t *testing.T) {
	images := []string{
		"registry.fedoraproject.org/f27/kubernetes-apiserver",
		"cafe",
	}
	for _, img := range images {
		got := Encode(img)
		if !strings.HasSuffix(got, "latest") {
			t.Errorf("Encode(%q) = %q, want latest suffix", img, got)
		}
	}
}

func TestEncodeEscapesTag(t *testing.T) {
	images := []string{
		"registry.fedoraproject.org/f27/kubernetes-apiserver:tag",
		"cafe:tag",
	}
	for _, img := range images {
		got := Encode(img)
		if !strings.HasSuffix(got, "_3Atag") {
			t.Errorf("Encode(%q) = %q, want _3Atag suffix", img, got)
		}
		if strings.Contains(got, ":") {
			t.Errorf("Encode(%q) = %q, contains raw ':'", img, got)
		}
	}
}

func TestEncodeNeverHex(t *testing.T) {
	images := []string{
		"cafe", // would be pure hex without encoding
		"deadbeef:cafe",
		"registry.fedoraproject.org/f27/kubernetes-apiserver",
		"registry.fedoraproject.org/f27/kubernetes-apiserver:tag",
	}
	for _, img := range images {
		if got := Encode(img); IsHex(got) {
			t.Errorf("Encode(%q) = %q is pure hex", img, got)
		}
	}
}

func TestEncodeQualifiedAndUnqualifiedConsistent(t *testing.T) {
	// Same transformation rules, different literal output: the unqualified
	// name must not be rewritten to its fully qualified form.
	got := Encode("cafe:tag")
	if got != "ociimage/cafe_3Atag" {
		t.Fatalf("Encode(cafe:tag) = %q, want ociimage/cafe_3Atag", got)
	}

	qualified := Encode("docker.io/library/cafe:tag")
	if qualified == got {
		t.Fatal("qualified and unqualified images encoded to the same ref")
	}
	if !strings.HasSuffix(qualified, "_3Atag") {
		t.Fatalf("Encode(docker.io/library/cafe:tag) = %q, want _3Atag suffix", qualified)
	}
}

func TestEncodeEscapesSlashes(t *testing.T) {
	got := Encode("example.com/ns/app:1.0")
	want := "ociimage/example.com_2Fns_2Fapp_3A1.0"
	if got != want {
		t.Fatalf("Encode = %q, want %q", got, want)
	}
}

func TestEncodeRegistryPortIsNotATag(t *testing.T) {
	got := Encode("localhost:5000/app")
	if !strings.HasSuffix(got, "latest") {
		t.Fatalf("Encode(localhost:5000/app) = %q, want latest suffix", got)
	}
}

func TestIsHex(t *testing.T) {
	tests := []struct {
		s    string
		want bool
	}{
		{"cafe", true},
		{"deadbeef0123456789abcdef", true},
		{"", false},
		{"CAFE", false},
		{"caffg", false},
		{"ociimage/cafe", false},
	}
	for _, tt := range tests {
		if got := IsHex(tt.s); got != tt.want {
			t.Errorf("IsHex(%q) = %v, want %v", tt.s, got, tt.want)
		}
	}
}

func TestParseTransport(t *testing.T) {
	tests := []struct {
		uri   string
		want  Transport
		image string
	}{
		{"http:docker.io/busybox:latest", TransportInsecure, "docker.io/busybox:latest"},
		{"docker.io/busybox:latest", TransportDefault, "docker.io/busybox:latest"},
		{"https:docker.io/busybox:latest", TransportSecure, "docker.io/busybox:latest"},
		{"oci:docker.io/busybox:latest", TransportOCI, "docker.io/busybox:latest"},
		{"ftp:docker.io/busybox:latest", TransportDefault, "ftp:docker.io/busybox:latest"},
	}
	for _, tt := range tests {
		transport, image := ParseTransport(tt.uri)
		if transport != tt.want {
			t.Errorf("ParseTransport(%q) transport = %v, want %v", tt.uri, transport, tt.want)
		}
		if image != tt.image {
			t.Errorf("ParseTransport(%q) image = %q, want %q", tt.uri, image, tt.image)
		}
	}
}

func TestTransportInsecure(t *testing.T) {
	if !TransportInsecure.Insecure() {
		t.Fatal("TransportInsecure.Insecure() = false")
	}
	for _, tr := range []Transport{TransportDefault, TransportSecure, TransportOCI} {
		if tr.Insecure() {
			t.Fatalf("%v.Insecure() = true", tr)
		}
	}
}
