package platform

import (
	"fmt"
	"net"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
)

func testName(t *testing.T) string {
	return fmt.Sprintf("clicksim-test-%s", t.Name())
}

func TestSecondInstanceIsRejected(t *testing.T) {
	name := testName(t)

	lock, err := Acquire(name, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("127.0.0.1:%d", PortFor(name)), lock.Address())

	_, err = Acquire(name, nil)
	assert.ErrorIs(t, err, ErrAlreadyRunning)

	require.NoError(t, lock.Release())
	require.NoError(t, lock.Release())

	again, err := Acquire(name, nil)
	require.NoError(t, err)
	require.NoError(t, again.Release())
}

func TestActivateRaisesHolder(t *testing.T) {
	defer goleak.VerifyNone(t)
	name := testName(t)

	lock, err := Acquire(name, zap.NewNop())
	require.NoError(t, err)
	var shown atomic.Int32
	lock.Serve(func() { shown.Add(1) })

	require.NoError(t, Activate(name))
	require.NoError(t, Activate(name))
	require.Eventually(t, func() bool { return shown.Load() == 2 }, 2*time.Second, 5*time.Millisecond)

	require.NoError(t, lock.Release())
}

func TestUnknownRequestIsIgnored(t *testing.T) {
	defer goleak.VerifyNone(t)
	name := testName(t)

	lock, err := Acquire(name, nil)
	require.NoError(t, err)
	var shown atomic.Int32
	lock.Serve(func() { shown.Add(1) })

	conn, err := net.Dial("tcp", lock.Address())
	require.NoError(t, err)
	_, err = fmt.Fprintln(conn, "quit")
	require.NoError(t, err)
	require.NoError(t, conn.Close())

	require.NoError(t, Activate(name))
	require.Eventually(t, func() bool { return shown.Load() == 1 }, 2*time.Second, 5*time.Millisecond)
	require.NoError(t, lock.Release())
	assert.Equal(t, int32(1), shown.Load())
}

func TestActivateWithoutHolderFails(t *testing.T) {
	err := Activate(testName(t))
	assert.Error(t, err)
}

func TestPortForIsStableAndInRange(t *testing.T) {
	port := PortFor("clicksim")
	assert.Equal(t, port, PortFor("clicksim"))
	assert.GreaterOrEqual(t, port, 20000)
	assert.LessOrEqual(t, port, 39999)
}

func TestNilLock(t *testing.T) {
	var lock *Lock
	assert.NoError(t, lock.Release())
	assert.Empty(t, lock.Address())
}
