// One-shot reachability and payload check for a candidate gateway
// address. Run this before adding a device to the monitor config.
package main

import (
	"context"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/NotCoffee418/open_inverter_monitor/pkg/inverter"
	"github.com/NotCoffee418/open_inverter_monitor/pkg/sensors"
)

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, "usage: inverter_probe <ip-address>")
		os.Exit(2)
	}
	ipAddress := os.Args[1]

	client := inverter.NewClient(ipAddress)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	reading, err := client.Validate(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "probe failed for %s: %v\n", client.StatusUrl(), err)
		os.Exit(1)
	}

	fmt.Printf("%s looks like a valid gateway, %d fields:\n", client.StatusUrl(), len(reading))

	keys := make([]string, 0, len(reading))
	for k := range reading {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		label := ""
		if desc, known := sensors.Descriptions[k]; known && desc.Unit != "" {
			label = " " + desc.Unit
		}
		if sensors.IsDailyField(k) {
			label += " (daily)"
		}
		fmt.Printf("  %-32s %v%s\n", k, reading[k], label)
	}
}
