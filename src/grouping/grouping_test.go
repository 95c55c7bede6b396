package grouping

import (
	"fmt"
	"testing"

	"faultline-agent/src/contracts"
	"faultline-agent/src/fingerprint"
)

func record(trace string) *contracts.ErrorRecord {
	return &contracts.ErrorRecord{
		Message: trace,
		Throwable: contracts.Throwable{
			Category: contracts.CategoryGeneric,
			Type:     "TestError",
			Message:  trace,
		},
	}
}

func TestGroupEmpty(t *testing.T) {
	view := Group(nil, fingerprint.New())
	if view.Size() != 0 {
		t.Errorf("expected empty view, got %d groups", view.Size())
	}
	if view.TotalRecords() != 0 {
		t.Errorf("expected 0 records, got %d", view.TotalRecords())
	}
}

func TestGroupDuplicatesNewestFirst(t *testing.T) {
	r1 := record("A")
	r2 := record("B")
	r3 := record("A")

	view := Group([]*contracts.ErrorRecord{r1, r2, r3}, fingerprint.New())

	if view.Size() != 2 {
		t.Fatalf("expected 2 groups, got %d", view.Size())
	}

	// Group order follows first occurrence: A before B.
	groupA, groupB := view.Groups[0], view.Groups[1]
	if groupA.Count() != 2 {
		t.Fatalf("group A: expected 2 records, got %d", groupA.Count())
	}
	if groupA.Head() != r3 {
		t.Error("group A head should be the newest duplicate r3")
	}
	if groupA.Records[1] != r1 {
		t.Error("group A should hold r1 after the head")
	}
	if groupB.Count() != 1 || groupB.Head() != r2 {
		t.Error("group B should hold exactly r2")
	}
}

func TestGroupPartitionIsExact(t *testing.T) {
	var records []*contracts.ErrorRecord
	for i := 0; i < 20; i++ {
		records = append(records, record(fmt.Sprintf("trace-%d", i%7)))
	}

	view := Group(records, fingerprint.New())

	if view.TotalRecords() != len(records) {
		t.Errorf("expected %d records across groups, got %d", len(records), view.TotalRecords())
	}

	seen := make(map[*contracts.ErrorRecord]int)
	for _, g := range view.Groups {
		for _, r := range g.Records {
			seen[r]++
		}
	}
	for i, r := range records {
		if seen[r] != 1 {
			t.Errorf("record %d appears %d times", i, seen[r])
		}
	}
}

func TestGroupDeterministic(t *testing.T) {
	records := []*contracts.ErrorRecord{record("A"), record("B"), record("A"), record("C")}
	hasher := fingerprint.New()

	first := Group(records, hasher)
	second := Group(records, hasher)

	if first.Size() != second.Size() {
		t.Fatalf("group counts differ: %d vs %d", first.Size(), second.Size())
	}
	for i := range first.Groups {
		if first.Groups[i].Key != second.Groups[i].Key {
			t.Errorf("group %d keys differ", i)
		}
		if first.Groups[i].Count() != second.Groups[i].Count() {
			t.Errorf("group %d sizes differ", i)
		}
	}
}

func TestGroupKeyMatchesMembers(t *testing.T) {
	records := []*contracts.ErrorRecord{record("A"), record("B"), record("A")}
	hasher := fingerprint.New()

	view := Group(records, hasher)
	for _, g := range view.Groups {
		for _, r := range g.Records {
			if hasher.Compute(r.Throwable.Text()) != g.Key {
				t.Errorf("record fingerprint does not match group key %s", g.Key)
			}
		}
	}
}
