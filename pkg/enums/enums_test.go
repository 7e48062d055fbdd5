package enums

import "testing"

func TestParseKnownValues(t *testing.T) {
	if v, err := ParseGearCategory("instrument"); err != nil || v != "instrument" {
		t.Fatalf("category: %v %v", v, err)
	}
	if v, err := ParseGearSubCategory("guitar"); err != nil || v != "guitar" {
		t.Fatalf("sub category: %v %v", v, err)
	}
	if v, err := ParseGearDetailCategory("electric"); err != nil || v != "electric" {
		t.Fatalf("detail category: %v %v", v, err)
	}
	if v, err := ParseGearCondition("Good"); err != nil || v != "Good" {
		t.Fatalf("condition: %v %v", v, err)
	}
	if v, err := ParseTradeMethod("Direct"); err != nil || v != "Direct" {
		t.Fatalf("trade method: %v %v", v, err)
	}
	if v, err := ParseGearStatus("Selling"); err != nil || v != GearStatus("Selling") {
		t.Fatalf("status: %v %v", v, err)
	}
	if v, err := ParseRegion("Seoul"); err != nil || v != RegionSeoul {
		t.Fatalf("region: %v %v", v, err)
	}
	if v, err := ParseSortOrder("desc"); err != nil || v != SortOrderDesc {
		t.Fatalf("sort order: %v %v", v, err)
	}
}

func TestParseRejectsUnknownValues(t *testing.T) {
	if _, err := ParseGearCategory("spaceship"); err == nil {
		t.Fatal("expected category error")
	}
	if _, err := ParseRegion("seoul"); err == nil {
		t.Fatal("expected region lookups to be case sensitive")
	}
	if _, err := ParseGearSortBy("random"); err == nil {
		t.Fatal("expected sort error")
	}
}

func TestOrdersMatchValidity(t *testing.T) {
	for _, v := range RegionOrder() {
		if !Region(v).IsValid() {
			t.Fatalf("region %q listed but invalid", v)
		}
	}
	for _, v := range GearStatusOrder() {
		if !GearStatus(v).IsValid() {
			t.Fatalf("status %q listed but invalid", v)
		}
	}
	if len(GearCategoryOrder()) == 0 {
		t.Fatal("expected categories")
	}
}
