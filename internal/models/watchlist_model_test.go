package models

import "testing"

func TestActionTransition(t *testing.T) {
	testCases := []struct {
		current  Action
		breakout bool
		expected Action
	}{
		{ActionNone, true, ActionBuy},
		{ActionNone, false, ActionNone},
		{ActionBuy, true, ActionBuy},
		{ActionBuy, false, ActionNone},
		{ActionAutoBuy, true, ActionAutoBuy},
		{ActionAutoBuy, false, ActionAutoBuy},
	}
	for _, tc := range testCases {
		if got := tc.current.Transition(tc.breakout); got != tc.expected {
			t.Errorf("Transition(%q, %v) = %q, expected %q", tc.current, tc.breakout, got, tc.expected)
		}
	}
}
