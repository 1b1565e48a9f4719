package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/fansqz/dap-inspector/constants"
	"github.com/fansqz/dap-inspector/display"
	"github.com/fansqz/dap-inspector/inspector"
	"github.com/fansqz/dap-inspector/utils"
)

// 定义版本号
const Version = "1.0.0"

func main() {
	showVersion := flag.Bool("version", false, "Show the version number")
	host := flag.String("host", "127.0.0.1", "Debug adapter host")
	port := flag.String("port", "5678", "Debug adapter port")
	adapterID := flag.String("adapter", "debugpy", "Adapter ID reported in the initialize request")
	depth := flag.Int("depth", constants.DefaultDepthLimit, "Variable tree expansion depth")
	readTimeout := flag.Duration("timeout", 10*time.Second, "Read deadline for the adapter connection")
	maxDuration := flag.Duration("max-duration", 5*time.Minute, "Wall clock limit for the whole inspection, 0 to disable")
	jsonOutput := flag.Bool("json", false, "Print the result as JSON instead of a tree")
	logPath := flag.String("log", "", "Log file path, logs go to stderr when empty")
	flag.Parse()

	if *showVersion {
		fmt.Printf("Version: %s\n", Version)
		return
	}

	SetupLogger(*logPath)
	defer CloseLogger()

	err := run(net.JoinHostPort(*host, *port), *adapterID, *depth, *readTimeout, *maxDuration, *jsonOutput)
	if err != nil {
		logrus.Errorf("inspection fail, err = %v", err)
		CloseLogger()
		os.Exit(1)
	}
}

func run(address, adapterID string, depth int, readTimeout, maxDuration time.Duration, jsonOutput bool) error {
	runID := utils.GetUUID()
	logrus.Infof("[main] inspection run %s, adapter = %s", runID, address)

	ctx := context.Background()
	transport, err := inspector.DialTCP(ctx, address, readTimeout)
	if err != nil {
		return err
	}

	session := inspector.NewSession(transport, inspector.LogObserver)
	defer session.Close()

	// 单次读超时挡不住一直在发事件的调试器，整次探查再加一个总时长上限
	if maxDuration > 0 {
		watchdog := utils.NewTimeoutManager()
		watchdog.Start(ctx, maxDuration, func() {
			logrus.Warnf("[main] inspection exceeded %s, closing connection", maxDuration)
			session.Close()
		})
		defer watchdog.Cancel()
	}

	result, err := inspector.NewInspector(session, adapterID, depth).Inspect(ctx)
	if err != nil {
		return err
	}
	logrus.Infof("[main] inspection run %s done, frames = %d", runID, len(result.Frames))

	if jsonOutput {
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	}
	display.NewRenderer(os.Stdout).RenderResult(result)
	return nil
}
