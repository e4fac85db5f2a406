package rule

import (
	"testing"

	"github.com/gin-gonic/gin/binding"
)

type registerForm struct {
	Name  string `rule:"required,max=8"`
	Email string `rule:"omitempty,email"`
}

func TestValidateStruct(t *testing.T) {
	cases := []struct {
		name    string
		form    registerForm
		wantErr bool
	}{
		{"valid", registerForm{Name: "Alice", Email: "a@b.com"}, false},
		{"empty email ok", registerForm{Name: "Alice"}, false},
		{"missing name", registerForm{Email: "a@b.com"}, true},
		{"name too long", registerForm{Name: "way-too-long-name"}, true},
		{"bad email", registerForm{Name: "Alice", Email: "nope"}, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateStruct(&tc.form)
			if (err != nil) != tc.wantErr {
				t.Fatalf("ValidateStruct(%+v) error = %v, wantErr %v", tc.form, err, tc.wantErr)
			}
		})
	}
}

// gin 的 binding 引擎先解析过的结构体类型会被其内部缓存记住；
// rule 校验必须不受影响，否则经由 ShouldBind 的类型将跳过全部规则.
func TestValidateStructAfterGinBinding(t *testing.T) {
	form := registerForm{Name: ""}

	// 先让 gin 的引擎按 binding 标签解析该类型（无规则，通过）
	if err := binding.Validator.ValidateStruct(&form); err != nil {
		t.Fatalf("gin binding validation unexpectedly failed: %v", err)
	}

	// rule 标签的 required 仍必须生效
	if err := ValidateStruct(&form); err == nil {
		t.Fatal("expected error for missing name after gin binding parsed the type")
	}
}

func TestValidateVar(t *testing.T) {
	if err := ValidateVar("user@example.com", "required,email"); err != nil {
		t.Fatalf("expected valid email, got %v", err)
	}

	if err := ValidateVar("not-an-email", "required,email"); err == nil {
		t.Fatal("expected error for invalid email")
	}
}

func TestRegisterAlias(t *testing.T) {
	RegisterAlias("doc_name", "required,max=128")

	if err := ValidateVar("report.pdf", "doc_name"); err != nil {
		t.Fatalf("expected valid name, got %v", err)
	}

	if err := ValidateVar("", "doc_name"); err == nil {
		t.Fatal("expected error for empty name")
	}
}
