package enums

import "testing"

func TestParsePaymentMethod(t *testing.T) {
	for _, raw := range []string{"cash", "card", "mixed", "nasiya"} {
		got, err := ParsePaymentMethod(raw)
		if err != nil {
			t.Fatalf("ParsePaymentMethod(%q) returned error: %v", raw, err)
		}
		if got.String() != raw {
			t.Fatalf("expected %q, got %q", raw, got)
		}
	}
	if _, err := ParsePaymentMethod("ach"); err == nil {
		t.Fatal("expected error for unknown payment method")
	}
}

func TestPaymentMethodIsCredit(t *testing.T) {
	if !PaymentMethodNasiya.IsCredit() {
		t.Fatal("nasiya should be credit")
	}
	for _, m := range []PaymentMethod{PaymentMethodCash, PaymentMethodCard, PaymentMethodMixed} {
		if m.IsCredit() {
			t.Fatalf("%s should not be credit", m)
		}
	}
}

func TestParseDiscountType(t *testing.T) {
	if got, err := ParseDiscountType("percentage"); err != nil || got != DiscountTypePercentage {
		t.Fatalf("unexpected result %q %v", got, err)
	}
	if got, err := ParseDiscountType("fixed"); err != nil || got != DiscountTypeFixed {
		t.Fatalf("unexpected result %q %v", got, err)
	}
	if _, err := ParseDiscountType("PERCENT"); err == nil {
		t.Fatal("expected error for unknown discount type")
	}
	if DiscountType("").IsValid() {
		t.Fatal("empty discount type should be invalid")
	}
}

func TestParseUserRole(t *testing.T) {
	if _, err := ParseUserRole("cashier"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := ParseUserRole("owner"); err == nil {
		t.Fatal("expected error for unknown role")
	}
}

func TestCheckoutStateTerminal(t *testing.T) {
	if CheckoutStateIdle.IsTerminal() || CheckoutStateSubmitting.IsTerminal() {
		t.Fatal("idle and submitting are not terminal")
	}
	if !CheckoutStateSuccess.IsTerminal() || !CheckoutStateFailed.IsTerminal() {
		t.Fatal("success and failed are terminal")
	}
}
