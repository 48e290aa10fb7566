package models

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestToneOf(t *testing.T) {
	cases := map[string]StatusTone{
		"Delivered":           ToneDelivered,
		"delivered to locker": ToneDelivered,
		"In Transit":          ToneTransit,
		"Shipped":             ToneTransit,
		"On the way":          ToneTransit,
		"Pending pickup":      TonePending,
		"Processing":          TonePending,
		"Exception":           ToneException,
		"On Hold":             ToneException,
		"Delivery failed":     ToneException,
		"Order Created":       ToneNeutral,
		"":                    ToneNeutral,
	}
	for status, want := range cases {
		require.Equal(t, want, ToneOf(status), status)
	}
}

func TestIsFinalStatus(t *testing.T) {
	require.True(t, IsFinalStatus("Delivered"))
	require.True(t, IsFinalStatus(" delivered "))
	require.False(t, IsFinalStatus("Out for Delivery"))
}
