package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics(t *testing.T) {
	// Register should be safe to call multiple times
	Register()
	Register()

	assert.NotPanics(t, func() {
		IncHTTP("/bookings/{bookingId}", 200)
	})

	before := testutil.ToFloat64(domainEvents.WithLabelValues("booking_created"))
	IncEvent("booking_created")
	assert.Equal(t, before+1, testutil.ToFloat64(domainEvents.WithLabelValues("booking_created")))

	limitedBefore := testutil.ToFloat64(rateLimited)
	IncRateLimited()
	assert.Equal(t, limitedBefore+1, testutil.ToFloat64(rateLimited))
}
