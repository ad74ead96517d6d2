// Command xbeectl is an example CLI exercising the xbee package's three
// external operations: reading local device info, running the Bluetooth
// SRP unlock sequence, and pushing a GPM firmware update.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/samuel/go-xbee/internal/xbeelog"
	"github.com/samuel/go-xbee/xbee"
	"github.com/spf13/cobra"
)

var (
	flagDevice = "/dev/ttyUSB0"
	flagBaud   = 9600
	flagEscape bool
)

func main() {
	root := &cobra.Command{
		Use:   "xbeectl",
		Short: "Inspect and drive an XBee module over a serial transport",
	}
	root.PersistentFlags().StringVarP(&flagDevice, "device", "d", flagDevice, "serial device path")
	root.PersistentFlags().IntVarP(&flagBaud, "baud", "b", flagBaud, "baud rate")
	root.PersistentFlags().BoolVar(&flagEscape, "escaped", false, "use API-2 escaped framing")

	root.AddCommand(infoCmd(), unlockCmd(), updateCmd(), resetCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func openSession(log *xbeelog.Logger) (*xbee.Session, func(), error) {
	port, err := openPort(flagDevice, flagBaud)
	if err != nil {
		return nil, nil, fmt.Errorf("xbeectl: opening %s: %w", flagDevice, err)
	}
	mode := xbee.Unescaped
	if flagEscape {
		mode = xbee.Escaped
	}
	sess, err := xbee.Open(port, xbee.WithEscapeMode(mode), xbee.WithLogger(log))
	if err != nil {
		port.Close()
		return nil, nil, err
	}
	return sess, func() { sess.Close(); port.Close() }, nil
}

func infoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Read serial number, node identifier, and firmware/hardware versions",
		RunE: func(cmd *cobra.Command, args []string) error {
			log := xbeelog.New(xbeelog.Config{Level: "info"})
			sess, cleanup, err := openSession(log)
			if err != nil {
				return err
			}
			defer cleanup()

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			hi, err := sess.ATParameter(ctx, xbee.ATSerialNumberHigh)
			if err != nil {
				return fmt.Errorf("reading serial number high: %w", err)
			}
			lo, err := sess.ATParameter(ctx, xbee.ATSerialNumberLow)
			if err != nil {
				return fmt.Errorf("reading serial number low: %w", err)
			}
			fmt.Printf("Serial number: %x%x\n", hi, lo)

			my, err := sess.ATParameter(ctx, xbee.AT16BitNetworkAddress)
			if err != nil {
				return fmt.Errorf("reading 16-bit network address: %w", err)
			}
			fmt.Printf("Network address: %x\n", my)

			ni, err := sess.ATParameter(ctx, xbee.ATNodeIdentifier)
			if err != nil {
				return fmt.Errorf("reading node identifier: %w", err)
			}
			fmt.Printf("Node identifier: %s\n", ni)

			vr, err := sess.ATParameter(ctx, xbee.ATFirmwareVersion)
			if err != nil {
				return fmt.Errorf("reading firmware version: %w", err)
			}
			fmt.Printf("Firmware version: %x\n", vr)

			hv, err := sess.ATParameter(ctx, xbee.ATHardwareVersion)
			if err != nil {
				return fmt.Errorf("reading hardware version: %w", err)
			}
			fmt.Printf("Hardware version: %x\n", hv)
			return nil
		},
	}
}

func resetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Issue a local software reset (AT FR)",
		RunE: func(cmd *cobra.Command, args []string) error {
			log := xbeelog.New(xbeelog.Config{Level: "info"})
			sess, cleanup, err := openSession(log)
			if err != nil {
				return err
			}
			defer cleanup()

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := sess.SetATParameter(ctx, xbee.ATSoftwareReset, nil); err != nil {
				return fmt.Errorf("reset failed: %w", err)
			}
			fmt.Println("Reset command sent")
			return nil
		},
	}
}

func unlockCmd() *cobra.Command {
	var dest64, dest16 uint64
	var timeout time.Duration
	var password string
	cmd := &cobra.Command{
		Use:   "unlock",
		Short: "Run the SRP Bluetooth unlock sequence against a remote module",
		RunE: func(cmd *cobra.Command, args []string) error {
			log := xbeelog.New(xbeelog.Config{Level: "info"})
			sess, cleanup, err := openSession(log)
			if err != nil {
				return err
			}
			defer cleanup()

			ctx, cancel := context.WithTimeout(context.Background(), timeout)
			defer cancel()

			addr := xbee.RemoteAddress{
				Addr64: xbee.Address64(dest64),
				Addr16: xbee.Address16(dest16),
			}
			result, err := sess.UnlockBluetooth(ctx, addr, password, xbee.DefaultSessionConfig())
			if err != nil {
				return fmt.Errorf("unlock failed: %w", err)
			}
			fmt.Printf("Unlocked, session key established (%d bytes)\n", len(result.SessionKey))
			return nil
		},
	}
	cmd.Flags().Uint64Var(&dest64, "addr64", 0, "64-bit destination address")
	cmd.Flags().Uint64Var(&dest16, "addr16", uint64(xbee.Address16Unknown), "16-bit destination address")
	cmd.Flags().DurationVar(&timeout, "timeout", 60*time.Second, "overall unlock timeout")
	cmd.Flags().StringVar(&password, "password", "", "Bluetooth unlock password")
	cmd.MarkFlagRequired("password")
	return cmd
}

func updateCmd() *cobra.Command {
	var dest64, dest16 uint64
	var firmwarePath string
	cmd := &cobra.Command{
		Use:   "update",
		Short: "Push a GPM firmware image to a remote module",
		RunE: func(cmd *cobra.Command, args []string) error {
			image, err := os.ReadFile(firmwarePath)
			if err != nil {
				return fmt.Errorf("reading firmware image: %w", err)
			}

			log := xbeelog.New(xbeelog.Config{Level: "info"})
			sess, cleanup, err := openSession(log)
			if err != nil {
				return err
			}
			defer cleanup()

			addr := xbee.RemoteAddress{
				Addr64: xbee.Address64(dest64),
				Addr16: xbee.Address16(dest16),
			}
			progress := make(chan xbee.UpdateProgress, 8)
			go func() {
				for p := range progress {
					fmt.Printf("[%3d%%] %s\n", p.Percent, p.Message)
				}
			}()

			ctx := context.Background()
			err = sess.UpdateFirmware(ctx, addr, image, xbee.DefaultSessionConfig(), progress)
			close(progress)
			if err != nil {
				return fmt.Errorf("update failed: %w", err)
			}
			fmt.Println("Update complete")
			return nil
		},
	}
	cmd.Flags().Uint64Var(&dest64, "addr64", 0, "64-bit destination address")
	cmd.Flags().Uint64Var(&dest16, "addr16", uint64(xbee.Address16Unknown), "16-bit destination address")
	cmd.Flags().StringVarP(&firmwarePath, "file", "f", "", "firmware image path")
	cmd.MarkFlagRequired("file")
	return cmd
}
