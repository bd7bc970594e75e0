package reconcile_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/karlo0/bqdc/pkg/logging"
	"github.com/karlo0/bqdc/pkg/reconcile"
)

func TestCheckDrift(t *testing.T) {
	d := reconcile.CheckDrift([]string{"a", "b", "c"}, []string{"b", "c", "d"})

	assert.Equal(t, []string{"a"}, d.NotInSchema)
	assert.Equal(t, []string{"d"}, d.NotInSheet)
	assert.False(t, d.Empty())
}

func TestCheckDriftCaseInsensitive(t *testing.T) {
	d := reconcile.CheckDrift([]string{"OrderID", "Amount"}, []string{"orderid", "amount"})
	assert.True(t, d.Empty())
}

func TestCheckDriftEmptySides(t *testing.T) {
	d := reconcile.CheckDrift(nil, []string{"a"})
	assert.Empty(t, d.NotInSchema)
	assert.Equal(t, []string{"a"}, d.NotInSheet)

	d = reconcile.CheckDrift([]string{"a"}, nil)
	assert.Equal(t, []string{"a"}, d.NotInSchema)
	assert.Empty(t, d.NotInSheet)
}

func TestDriftLog(t *testing.T) {
	log := logging.NewTestLogger(t)

	d := reconcile.CheckDrift([]string{"a", "b", "c"}, []string{"b", "c", "d"})
	d.Log(log.Logger, "orders")

	assert.True(t, log.ContainsAll("<", ">", "orders"))
	assert.True(t, log.Contains(`"field":"a"`))
	assert.True(t, log.Contains(`"field":"d"`))

	log.Buffer.Reset()
	reconcile.CheckDrift([]string{"x"}, []string{"x"}).Log(log.Logger, "orders")
	assert.Empty(t, log.Output(), "no report when the sets match")
}
