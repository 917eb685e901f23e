package platform

import (
	"bufio"
	"errors"
	"fmt"
	"hash/fnv"
	"net"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ErrAlreadyRunning indicates another simulator window holds the lock.
var ErrAlreadyRunning = errors.New("instance already running")

const (
	activateRequest = "show"
	requestTimeout  = time.Second
)

// Lock is held by the simulator window for its lifetime. While served, later
// launches can ask it to raise the window instead of opening a second one.
type Lock struct {
	listener net.Listener
	address  string
	logger   *zap.Logger

	mu       sync.Mutex
	released bool
	wg       sync.WaitGroup
}

// Acquire takes the lock of appName on a localhost port derived from the name.
func Acquire(appName string, logger *zap.Logger) (*Lock, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	address := addressFor(appName)
	listener, err := net.Listen("tcp", address)
	if err != nil {
		return nil, fmt.Errorf("%w on %s", ErrAlreadyRunning, address)
	}
	return &Lock{listener: listener, address: address, logger: logger}, nil
}

// Serve answers activation requests until Release. onActivate runs on the
// serving goroutine.
func (lock *Lock) Serve(onActivate func()) {
	lock.wg.Add(1)
	go func() {
		defer lock.wg.Done()
		for {
			conn, err := lock.listener.Accept()
			if err != nil {
				if !lock.isReleased() {
					lock.logger.Warn("Instance lock stopped accepting", zap.Error(err))
				}
				return
			}
			if lock.handle(conn) && onActivate != nil {
				onActivate()
			}
		}
	}()
}

func (lock *Lock) handle(conn net.Conn) bool {
	defer conn.Close()
	_ = conn.SetReadDeadline(time.Now().Add(requestTimeout))
	line, err := bufio.NewReader(conn).ReadString('\n')
	if err != nil {
		lock.logger.Debug("Dropped instance request", zap.Error(err))
		return false
	}
	request := strings.TrimSpace(line)
	if request != activateRequest {
		lock.logger.Debug("Ignored instance request", zap.String("request", request))
		return false
	}
	lock.logger.Info("Another launch asked to show the window")
	return true
}

// Release gives the lock up and waits for Serve to return. It is safe on a nil
// lock and when called twice.
func (lock *Lock) Release() error {
	if lock == nil {
		return nil
	}
	lock.mu.Lock()
	if lock.released {
		lock.mu.Unlock()
		return nil
	}
	lock.released = true
	lock.mu.Unlock()

	err := lock.listener.Close()
	lock.wg.Wait()
	return err
}

// Address returns the bound address.
func (lock *Lock) Address() string {
	if lock == nil {
		return ""
	}
	return lock.address
}

func (lock *Lock) isReleased() bool {
	lock.mu.Lock()
	defer lock.mu.Unlock()
	return lock.released
}

// Activate asks the window holding the lock of appName to show itself.
func Activate(appName string) error {
	address := addressFor(appName)
	conn, err := net.DialTimeout("tcp", address, requestTimeout)
	if err != nil {
		return fmt.Errorf("activate %s: %w", address, err)
	}
	defer conn.Close()
	_ = conn.SetWriteDeadline(time.Now().Add(requestTimeout))
	if _, err := fmt.Fprintln(conn, activateRequest); err != nil {
		return fmt.Errorf("activate %s: %w", address, err)
	}
	return nil
}

// PortFor maps an application name onto the lock port range.
func PortFor(appName string) int {
	const (
		minPort = 20000
		maxPort = 39999
	)
	hash := fnv.New32a()
	_, _ = hash.Write([]byte(appName))
	return minPort + int(hash.Sum32()%uint32(maxPort-minPort+1))
}

func addressFor(appName string) string {
	return fmt.Sprintf("127.0.0.1:%d", PortFor(appName))
}
