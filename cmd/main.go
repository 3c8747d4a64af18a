package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	gnssdb "github.com/openfms/teseo-device/db/clickhouse"
	"github.com/openfms/teseo-device/device"
	"github.com/openfms/teseo-device/observability"
	"github.com/openfms/teseo-device/publisher"
	"github.com/openfms/teseo-device/session"
	"github.com/openfms/teseo-device/simulator"
	"github.com/openfms/teseo-device/transport"
)

var (
	DeviceID       string
	SerialDevice   string
	SerialBaud     int
	TCPAddress     string
	NatsAddr       string
	GNSSClickhouse string
	MetricsPort    string

	SimulatorListenAddr string
	SimulatorIntervalMs int
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("create new logger failed:%v\n", err)
	}
	app := &cli.App{
		Name:  "teseodrv",
		Usage: "st teseo gnss receiver driver",
		Commands: []*cli.Command{
			{
				Name:  "serve",
				Usage: "starts the receiver driver",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:        "id",
						Usage:       "device id used in subjects and archive rows",
						Value:       "teseo-0",
						DefaultText: "teseo-0",
						Destination: &DeviceID,
						EnvVars:     []string{"DEVICE_ID"},
					},
					&cli.StringFlag{
						Name:        "device",
						Usage:       "serial device node",
						Value:       "/dev/ttyAMA0",
						DefaultText: "/dev/ttyAMA0",
						Destination: &SerialDevice,
						EnvVars:     []string{"SERIAL_DEVICE"},
					},
					&cli.IntFlag{
						Name:        "baud",
						Usage:       "serial baud rate",
						Value:       115200,
						DefaultText: "115200",
						Destination: &SerialBaud,
						EnvVars:     []string{"SERIAL_BAUD"},
					},
					&cli.StringFlag{
						Name:        "tcp",
						Usage:       "connect over tcp instead of serial (host:port)",
						Destination: &TCPAddress,
						EnvVars:     []string{"TCP_ADDRESS"},
					},
					&cli.StringFlag{
						Name:        "nats",
						Usage:       "nats Address",
						Value:       "127.0.0.1:4222",
						DefaultText: "127.0.0.1:4222",
						Destination: &NatsAddr,
						EnvVars:     []string{"NATS"},
						Required:    true,
					},
					&cli.StringFlag{
						Name:        "gnssdb",
						Usage:       "gnss archive clickhouse url",
						Destination: &GNSSClickhouse,
						EnvVars:     []string{"CLICKHOUSE_DATABASE_URL"},
					},
					&cli.StringFlag{
						Name:        "metrics-port",
						Usage:       "prometheus metrics port",
						Value:       "9090",
						DefaultText: "9090",
						Destination: &MetricsPort,
						EnvVars:     []string{"METRICS_PORT"},
					},
				},
				Action: func(ctx *cli.Context) error {
					natsCon, err := nats.Connect(NatsAddr)
					if err != nil {
						return err
					}

					pub := publisher.New(natsCon, DeviceID, logger)
					listeners := device.Listeners{pub}
					if GNSSClickhouse != "" {
						archive, err := gnssdb.ConnectGNSSDB(GNSSClickhouse)
						if err != nil {
							return err
						}
						listeners = append(listeners, gnssdb.NewRecorder(archive, DeviceID, logger))
					}

					var tr transport.Transport
					if TCPAddress != "" {
						tr = transport.NewTCP(TCPAddress)
					} else {
						tr = transport.NewSerial(SerialDevice, SerialBaud)
					}

					sess := session.New(tr, session.Options{
						Listener:       listeners,
						GeofenceSink:   pub,
						StatusListener: pub,
					}, logger)

					go observability.StartMetricsServer(MetricsPort)

					if err := sess.Start(); err != nil {
						return err
					}
					if err := sess.Send(device.MessageGetVersions, nil); err != nil {
						logger.Warn("version query failed", zap.Error(err))
					}

					sigs := make(chan os.Signal, 1)
					signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
					<-sigs
					sess.Stop()
					return nil
				},
			},
			{
				Name:  "simulator",
				Usage: "starts a fake teseo receiver",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:        "listen",
						Usage:       "simulator listen address",
						Destination: &SimulatorListenAddr,
						Required:    true,
					},
					&cli.IntFlag{
						Name:        "interval",
						Usage:       "cycle interval in milliseconds",
						Value:       1000,
						DefaultText: "1000",
						Destination: &SimulatorIntervalMs,
					},
				},
				Action: func(ctx *cli.Context) error {
					if SimulatorIntervalMs <= 0 {
						return fmt.Errorf("interval must be positive, got %d", SimulatorIntervalMs)
					}
					teseoSimulator := simulator.NewTeseoDevice(
						SimulatorListenAddr,
						time.Duration(SimulatorIntervalMs)*time.Millisecond,
						logger,
					)
					if e := teseoSimulator.Start(); e != nil {
						return e
					}

					sigs := make(chan os.Signal, 1)
					signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
					<-sigs
					teseoSimulator.Stop()
					return nil
				},
			},
		},
	}

	if e := app.Run(os.Args); e != nil {
		logger.Error("failed to run app", zap.Error(e))
	}
}
