// Command client squares the integers 1..REQUEST_COUNT using a running square
// server: it sends every request first and then collects the replies.
package main

import (
	"fmt"
	"os"

	"github.com/hasirciogluhq/xsquare/cmd/square/internal/client"
	"github.com/hasirciogluhq/xsquare/cmd/square/internal/config"
	"github.com/hasirciogluhq/xsquare/cmd/square/internal/logger"
)

func main() {
	cfg, err := config.LoadClientFromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(1)
	}
	logger.Init(false)

	c, err := client.New(cfg.Host, cfg.Port)
	if err != nil {
		logger.Fatal("Failed to connect", "host", cfg.Host, "port", cfg.Port, "error", err)
	}
	defer c.Close()

	if err := run(c, cfg.RequestCount); err != nil {
		logger.Error("Squaring failed", "error", err)
		c.Close()
		os.Exit(1)
	}
}

func run(c *client.Client, n int) error {
	for x := 1; x <= n; x++ {
		if err := c.SendRequest(uint32(x)); err != nil {
			return err
		}
		fmt.Printf("%d^2 = ?\n", x)
	}

	for x := 1; x <= n; x++ {
		y, err := c.GetReply()
		if err != nil {
			return fmt.Errorf("reply %d: %w", x, err)
		}
		fmt.Printf("%d^2 = %d\n", x, y)
	}
	return nil
}
