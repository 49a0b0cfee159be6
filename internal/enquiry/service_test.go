package enquiry

import (
	"errors"
	"testing"

	validator "github.com/go-playground/validator/v10"
)

func TestValidateInput(t *testing.T) {
	svc := &Service{Validate: validator.New()}

	valid := Input{
		Name:    "Lim Wei",
		Email:   "lim.wei@example.com",
		Subject: "Bulk pricing for N25",
		Message: "We need roughly 40 cubic metres delivered over two weeks.",
	}
	if err := svc.validate(valid); err != nil {
		t.Fatalf("validate(valid) = %v, want nil", err)
	}

	cases := []struct {
		name  string
		mut   func(*Input)
		field string
	}{
		{"missing name", func(in *Input) { in.Name = "" }, "Name"},
		{"short name", func(in *Input) { in.Name = "A" }, "Name"},
		{"missing email", func(in *Input) { in.Email = "" }, "Email"},
		{"bad email", func(in *Input) { in.Email = "not-an-email" }, "Email"},
		{"missing subject", func(in *Input) { in.Subject = "" }, "Subject"},
		{"short message", func(in *Input) { in.Message = "too short" }, "Message"},
		{"short phone", func(in *Input) { in.Phone = "123" }, "Phone"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := valid
			tc.mut(&in)
			err := svc.validate(in)
			if !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("validate(%s) = %v, want ErrInvalidInput", tc.name, err)
			}
		})
	}
}
