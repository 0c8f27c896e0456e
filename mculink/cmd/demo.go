package cmd

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"

	"github.com/sarchlab/mculink/comm"
	"github.com/sarchlab/mculink/datarecording"
	"github.com/sarchlab/mculink/monitoring"
	"github.com/sarchlab/mculink/tracing"
)

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Run a demonstration producer/consumer session over one channel",
	Run:   runDemo,
}

func init() {
	rootCmd.AddCommand(demoCmd)

	demoCmd.Flags().Int("capacity", 0,
		"channel capacity (defaults to MCULINK_CAPACITY, then 5)")
	demoCmd.Flags().Bool("monitor", false,
		"start the monitoring server (port from MCULINK_MONITOR_PORT)")
	demoCmd.Flags().Bool("open-dashboard", false,
		"open the monitoring page in the browser")
	demoCmd.Flags().String("trace-db", "",
		"record transfers into this SQLite database "+
			"(defaults to MCULINK_TRACE_DB)")
	demoCmd.Flags().Bool("log-msgs", false,
		"log every message movement to stderr")
}

func runDemo(cmd *cobra.Command, _ []string) {
	capacity := intFlagOrEnv(cmd, "capacity", "MCULINK_CAPACITY", 5)

	protocol, err := comm.NewProtocol("Link", capacity)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		atexit.Exit(1)
	}

	setupLogging(cmd, protocol)
	setupTracing(cmd, protocol)
	monitor := setupMonitoring(cmd, protocol)

	runScenario(protocol)
	runOverwriteScenario(protocol, capacity)
	runIntegrityCheck()

	if monitor != nil {
		fmt.Println("\nMonitoring server running, press Ctrl+C to stop.")
		select {}
	}

	atexit.Exit(0)
}

func setupLogging(cmd *cobra.Command, protocol *comm.Protocol) {
	logMsgs, _ := cmd.Flags().GetBool("log-msgs")
	if !logMsgs {
		return
	}

	logger := log.New(os.Stderr, "", 0)
	protocol.AcceptHook(comm.NewChannelMsgLogger(logger))
}

func setupTracing(cmd *cobra.Command, protocol *comm.Protocol) {
	traceDB, _ := cmd.Flags().GetString("trace-db")
	if traceDB == "" {
		traceDB = os.Getenv("MCULINK_TRACE_DB")
	}
	if traceDB == "" {
		return
	}

	backend := datarecording.New(traceDB)
	tracer := tracing.NewDBTracer(tracing.NewWallClock(), backend)
	tracing.CollectTrace(protocol, tracer)
}

func setupMonitoring(
	cmd *cobra.Command,
	protocol *comm.Protocol,
) *monitoring.Monitor {
	enabled, _ := cmd.Flags().GetBool("monitor")
	if !enabled {
		return nil
	}

	port := intFlagOrEnv(cmd, "", "MCULINK_MONITOR_PORT", 0)

	monitor := monitoring.NewMonitor()
	if port > 0 {
		monitor = monitor.WithPortNumber(port)
	}
	monitor.RegisterProtocol(protocol)
	monitor.StartServer()

	openDashboard, _ := cmd.Flags().GetBool("open-dashboard")
	if openDashboard {
		monitor.OpenDashboard()
	}

	return monitor
}

func runScenario(protocol *comm.Protocol) {
	fmt.Println("==== Channel Session Demo ====")

	payloads := [][]byte{
		{0x01, 0x02, 0x03},
		{0x04, 0x05},
		{0x06},
	}
	for _, payload := range payloads {
		id := protocol.Send(payload)
		fmt.Printf("Producer sent message, ID %d\n", id)
	}

	status := protocol.Status()
	fmt.Printf("Channel status: %d messages, empty: %t, full: %t\n",
		status.Length, status.Empty, status.Full)

	drain(protocol)
}

func runOverwriteScenario(protocol *comm.Protocol, capacity int) {
	fmt.Println("\n==== Overwrite Demo ====")

	for i := 0; i <= capacity; i++ {
		id := protocol.Send([]byte{byte(i)})
		fmt.Printf("Producer sent message, ID %d\n", id)
	}
	fmt.Printf("Sent %d messages into a capacity-%d channel; "+
		"the oldest one is gone.\n", capacity+1, capacity)

	drain(protocol)
}

func runIntegrityCheck() {
	fmt.Println("\n==== Integrity Demo ====")

	msg := comm.NewMessage(9, []byte{0x10, 0x20, 0x30})
	fmt.Printf("Message %d checksum 0x%02x, verify: %t\n",
		msg.ID, msg.Checksum, msg.Verify())

	msg.Payload[1] ^= 0xFF
	fmt.Printf("After corrupting one byte, verify: %t\n", msg.Verify())
}

func drain(protocol *comm.Protocol) {
	for {
		delivery, ok := protocol.Receive()
		if !ok {
			fmt.Println("Consumer: no messages available")
			return
		}

		if delivery.Valid {
			fmt.Printf("Consumer received message, ID %d, payload %v\n",
				delivery.Msg.ID, delivery.Msg.Payload)
		} else {
			fmt.Printf("Consumer received corrupted message, ID %d\n",
				delivery.Msg.ID)
		}
	}
}

func intFlagOrEnv(
	cmd *cobra.Command,
	flagName, envName string,
	fallback int,
) int {
	if flagName != "" {
		value, err := cmd.Flags().GetInt(flagName)
		if err == nil && value > 0 {
			return value
		}
	}

	evValue, exist := os.LookupEnv(envName)
	if exist {
		value, err := strconv.Atoi(evValue)
		if err == nil {
			return value
		}
	}

	return fallback
}
