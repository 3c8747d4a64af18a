// Package simulator is a fake Teseo receiver behind a TCP socket. It
// streams a GGA/GSV/GSA/VTG cycle at a fixed rate and answers the version
// query, which is enough to exercise the full driver pipeline without
// hardware on the bench.
package simulator

import (
	"net"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/openfms/teseo-device/nmea"
)

type TeseoDevice struct {
	addr     string
	interval time.Duration
	log      *zap.Logger

	ln   net.Listener
	quit chan struct{}
	wg   sync.WaitGroup

	mu    sync.Mutex
	state walkState
}

type TeseoInterface interface {
	Start() error
	Stop()
	Addr() string
}

var _ TeseoInterface = &TeseoDevice{}

func NewTeseoDevice(addr string, interval time.Duration, logger *zap.Logger) *TeseoDevice {
	return &TeseoDevice{
		addr:     addr,
		interval: interval,
		log:      logger,
		quit:     make(chan struct{}),
		state:    newWalkState(),
	}
}

func (td *TeseoDevice) Start() error {
	ln, err := net.Listen("tcp", td.addr)
	if err != nil {
		return err
	}
	td.ln = ln
	td.wg.Add(1)
	go td.acceptLoop()
	td.log.Info("simulator listening", zap.String("addr", ln.Addr().String()))
	return nil
}

func (td *TeseoDevice) Stop() {
	close(td.quit)
	if td.ln != nil {
		td.ln.Close()
	}
	td.wg.Wait()
	td.log.Info("simulator stopped")
}

// Addr reports the bound listen address, useful with ":0".
func (td *TeseoDevice) Addr() string {
	if td.ln == nil {
		return td.addr
	}
	return td.ln.Addr().String()
}

func (td *TeseoDevice) acceptLoop() {
	defer td.wg.Done()
	for {
		conn, err := td.ln.Accept()
		if err != nil {
			select {
			case <-td.quit:
				return
			default:
				td.log.Error("accept failed", zap.Error(err))
				return
			}
		}
		td.wg.Add(1)
		go td.handleConnection(conn)
	}
}

func (td *TeseoDevice) handleConnection(conn net.Conn) {
	defer td.wg.Done()
	defer conn.Close()
	td.log.Info("client connected", zap.String("remote", conn.RemoteAddr().String()))

	// Commands from the driver are answered from a separate goroutine so
	// the cycle stream never stalls on a slow reader.
	td.wg.Add(1)
	go td.answerCommands(conn)

	ticker := time.NewTicker(td.interval)
	defer ticker.Stop()
	for {
		select {
		case <-td.quit:
			return
		case now := <-ticker.C:
			if err := td.writeCycle(conn, now); err != nil {
				td.log.Info("client disconnected", zap.Error(err))
				return
			}
		}
	}
}

func (td *TeseoDevice) writeCycle(conn net.Conn, now time.Time) error {
	td.mu.Lock()
	td.state.step()
	payloads := cyclePayloads(td.state, now)
	td.mu.Unlock()

	for _, payload := range payloads {
		if _, err := conn.Write(nmea.EncodeSentence([]byte(payload))); err != nil {
			return err
		}
	}
	return nil
}

var versionPayloads = []string{
	"PSTMVER,GNSSLIB_7.2.15.45",
	"PSTMVER,OS20LIB_4.2.0",
	"PSTMVER,GPSAPP_2.1.0",
}

func (td *TeseoDevice) answerCommands(conn net.Conn) {
	defer td.wg.Done()
	buf := make([]byte, 1024)
	for {
		n, err := conn.Read(buf)
		if err != nil {
			return
		}
		request := string(buf[:n])
		if strings.Contains(request, "PSTMGETSWVER") {
			for _, payload := range versionPayloads {
				if _, werr := conn.Write(nmea.EncodeSentence([]byte(payload))); werr != nil {
					return
				}
			}
		}
	}
}
