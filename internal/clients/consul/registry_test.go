package consul

import "testing"

func TestServiceID(t *testing.T) {
	cfg := Config{ServiceName: "tutor-backend", ServiceHost: "pod-1", ServicePort: 8080}
	if got := ServiceID(cfg); got != "tutor-backend-pod-1-8080" {
		t.Fatalf("ServiceID = %q", got)
	}
}

func TestRegisterRequiresNameAndPort(t *testing.T) {
	r, err := NewRegistry(nil, "127.0.0.1:1")
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	if err := r.Register(Config{ServiceName: "x"}); err == nil {
		t.Fatalf("expected error without port")
	}
	if err := r.Deregister(); err != nil {
		t.Fatalf("Deregister before Register should be a no-op: %v", err)
	}
}
