package batchsync

import (
	"reflect"
	"testing"
)

func TestClosedStates(t *testing.T) {
	cases := []struct {
		name          string
		includeClosed bool
		want          []bool
	}{
		{"steady state only syncs live page", false, []bool{false}},
		{"fresh database backfills both pages", true, []bool{false, true}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := closedStates(tc.includeClosed)
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("closedStates(%v) = %v, want %v", tc.includeClosed, got, tc.want)
			}
		})
	}
}
