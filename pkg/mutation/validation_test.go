package mutation

import "testing"

func TestSchema_ValidatePayloads(t *testing.T) {
	sch, err := CompileSchema([]byte(`{"type":"object","properties":{"amount":{"type":"number"}},"required":["amount"],"additionalProperties":false}`))
	if err != nil {
		t.Fatal(err)
	}

	if err := sch.Validate(map[string]any{"amount": 2.5}); err != nil {
		t.Fatalf("valid payload rejected: %v", err)
	}
	if err := sch.Validate(map[string]any{"amount": "two"}); err == nil {
		t.Fatal("invalid payload accepted")
	}
	if err := sch.Validate(map[string]any{}); err == nil {
		t.Fatal("missing required field accepted")
	}
}

func TestSchema_NormalizesLikeACapture(t *testing.T) {
	// Live commits carry ints; captures come back as float64. Both shapes
	// must validate identically.
	sch, err := CompileSchema([]byte(`{"type":"integer","minimum":0}`))
	if err != nil {
		t.Fatal(err)
	}
	if err := sch.Validate(3); err != nil {
		t.Fatalf("int payload rejected: %v", err)
	}
	if err := sch.Validate(float64(3)); err != nil {
		t.Fatalf("float64 payload rejected: %v", err)
	}
	if err := sch.Validate(-1); err == nil {
		t.Fatal("negative payload accepted")
	}
}

func TestCompileSchema_Errors(t *testing.T) {
	if _, err := CompileSchema([]byte(`{"type":`)); err == nil {
		t.Fatal("malformed schema compiled")
	}
	if _, err := CompileSchema(nil); err == nil {
		t.Fatal("empty schema compiled")
	}
}
