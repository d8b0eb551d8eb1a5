package models

import (
	"encoding/json"
	"testing"
)

func TestRatioValueJSON(t *testing.T) {
	t.Run("number marshals as number", func(t *testing.T) {
		b, err := json.Marshal(Value(1.5))
		if err != nil {
			t.Fatal(err)
		}
		if string(b) != "1.5" {
			t.Errorf("marshal = %s, want 1.5", b)
		}
	})
	t.Run("NA marshals as string", func(t *testing.T) {
		b, err := json.Marshal(NA)
		if err != nil {
			t.Fatal(err)
		}
		if string(b) != `"N/A"` {
			t.Errorf("marshal = %s, want \"N/A\"", b)
		}
	})
	t.Run("round trip", func(t *testing.T) {
		for _, raw := range []string{"2.25", `"N/A"`} {
			var v RatioValue
			if err := json.Unmarshal([]byte(raw), &v); err != nil {
				t.Fatalf("unmarshal %s: %v", raw, err)
			}
			b, _ := json.Marshal(v)
			if string(b) != raw {
				t.Errorf("round trip %s -> %s", raw, b)
			}
		}
	})
	t.Run("garbage rejected", func(t *testing.T) {
		var v RatioValue
		if err := json.Unmarshal([]byte(`"whatever"`), &v); err == nil {
			t.Error("unexpected success")
		}
	})
}

func TestValidCategory(t *testing.T) {
	for _, c := range []RatioCategory{CategoryLiquidity, CategoryProfitability, CategorySolvency, CategoryEfficiency, CategoryCustom} {
		if !ValidCategory(c) {
			t.Errorf("ValidCategory(%q) = false", c)
		}
	}
	if ValidCategory("misc") {
		t.Error(`ValidCategory("misc") = true`)
	}
}
