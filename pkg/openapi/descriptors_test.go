package openapi

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/AGitCalledHangFeng/smart-form-predictor/pkg/form"
)

const sampleDoc = `
openapi: 3.0.3
info:
  title: Signup
  version: 1.0.0
paths:
  /signup:
    post:
      operationId: createAccount
      requestBody:
        content:
          application/json:
            schema:
              type: object
              required: [email]
              properties:
                email:
                  type: string
                  format: email
                phone_number:
                  type: string
                  minLength: 7
                  maxLength: 20
                age:
                  type: integer
                plan:
                  type: string
                  enum: [free, pro]
                username:
                  type: string
                  pattern: "^[a-z0-9_]+$"
      responses:
        "201":
          description: created
`

func TestDescriptorsFromData(t *testing.T) {
	got, err := DescriptorsFromData(context.Background(), []byte(sampleDoc), "createAccount")
	if err != nil {
		t.Fatalf("DescriptorsFromData: %v", err)
	}

	want := []form.FieldDescriptor{
		{Name: "age", Kind: form.FieldKindNumber},
		{Name: "email", Kind: form.FieldKindEmail, Required: true},
		{Name: "phone_number", Kind: form.FieldKindPhone, MinLength: 7, MaxLength: 20},
		{Name: "plan", Kind: form.FieldKindSelect},
		{Name: "username", Kind: form.FieldKindText, Pattern: "^[a-z0-9_]+$"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("descriptors (-want +got):\n%s", diff)
	}
}

func TestDescriptorsFromDataUnknownOperation(t *testing.T) {
	if _, err := DescriptorsFromData(context.Background(), []byte(sampleDoc), "missing"); err == nil {
		t.Fatalf("expected error for unknown operation")
	}
}

func TestDescriptorsFromDataEmptyPayload(t *testing.T) {
	if _, err := DescriptorsFromData(context.Background(), nil, "createAccount"); err == nil {
		t.Fatalf("expected error for empty payload")
	}
}
