// enroll-user starts fingerprint enrollment for one employee from the
// command line, against the terminal configured in the environment.
// The employee then completes the capture at the device itself.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"github.com/PrimChim/Attendance-zkteco/app/config"
	"github.com/PrimChim/Attendance-zkteco/app/device"
	"github.com/PrimChim/Attendance-zkteco/app/device/devicetest"
	"github.com/PrimChim/Attendance-zkteco/app/enroll"
)

func main() {
	userID := flag.String("user", "", "employee id to enroll (required)")
	slot := flag.Int("slot", enroll.DefaultSlot, "fingerprint template slot (0-9)")
	flag.Parse()

	if *userID == "" {
		flag.Usage()
		log.Fatal("missing -user")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Invalid configuration: ", err)
	}

	transport, err := newTransport(cfg.Device.Driver)
	if err != nil {
		log.Fatal(err)
	}

	addr := device.Address{
		Host:    cfg.Device.Host,
		Port:    cfg.Device.Port,
		Timeout: cfg.Device.Timeout,
	}
	coordinator := enroll.New(device.NewManager(transport), addr)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Device.Timeout*3)
	defer cancel()

	ticket, err := coordinator.Begin(ctx, *userID, *slot)
	if err != nil {
		log.Fatal("Enrollment failed: ", err)
	}

	fmt.Printf("Enrollment %s for user %s (uid %d, slot %d): %s\n",
		ticket.Status, ticket.ExternalID, ticket.InternalID, ticket.Slot, ticket.ID)
	fmt.Println("Complete the fingerprint capture on the device.")
}

func newTransport(driver string) (device.Transport, error) {
	switch driver {
	case "sim":
		log.Println("Using simulated terminal (DEVICE_DRIVER=sim)")
		return devicetest.New(), nil
	default:
		return nil, fmt.Errorf("unknown device driver %q", driver)
	}
}
