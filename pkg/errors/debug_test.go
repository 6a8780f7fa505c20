package errors

import (
	"fmt"
	"testing"

	"github.com/lib/pq"
)

func TestDumpCollectsCodeAndChain(t *testing.T) {
	err := fmt.Errorf("outer: %w", New(CodeNotFound, "order not found"))

	dump := Dump(err)
	if dump.Message != "outer: NOT_FOUND: order not found" {
		t.Fatalf("unexpected message %q", dump.Message)
	}
	if dump.Code != CodeNotFound {
		t.Fatalf("expected code %s got %s", CodeNotFound, dump.Code)
	}
	if len(dump.Chain) != 2 {
		t.Fatalf("expected 2 chain entries got %d", len(dump.Chain))
	}
	if dump.PGCode != "" {
		t.Fatalf("expected no pg fields, got code %q", dump.PGCode)
	}
}

func TestDumpExtractsDriverError(t *testing.T) {
	pqErr := &pq.Error{
		Code:       "23505",
		Constraint: "cart_items_cart_id_product_id_supplier_offer_id_key",
		Table:      "cart_items",
		Message:    "duplicate key value violates unique constraint",
	}
	err := Wrap(CodeConflict, pqErr, "insert cart item")

	dump := Dump(err)
	if dump.Code != CodeConflict {
		t.Fatalf("expected code %s got %s", CodeConflict, dump.Code)
	}
	if dump.PGCode != "23505" {
		t.Fatalf("expected pg code 23505 got %q", dump.PGCode)
	}
	if dump.PGConstraint != pqErr.Constraint {
		t.Fatalf("expected constraint %q got %q", pqErr.Constraint, dump.PGConstraint)
	}
	if dump.PGTable != "cart_items" {
		t.Fatalf("expected table cart_items got %q", dump.PGTable)
	}
}

func TestDumpNilError(t *testing.T) {
	dump := Dump(nil)
	if dump.Message != "" || dump.Code != "" || dump.Chain != nil {
		t.Fatalf("expected zero dump, got %+v", dump)
	}
}
