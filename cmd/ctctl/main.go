package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/alecthomas/kong"

	"github.com/tank0226/current-task/internal/control/client"
)

var cli struct {
	Socket string `help:"Control socket path (defaults to the runtime dir)" default:""`
	JSON   bool   `help:"Print raw JSON payloads"`

	Status  struct{} `cmd:"" default:"1" help:"Show the daemon's current snapshot"`
	Explain struct{} `cmd:"" help:"Show rule-by-rule evaluation against the last snapshot"`
	Reload  struct{} `cmd:"" help:"Reload the daemon configuration"`
}

func main() {
	ctx := context.Background()
	parsed := kong.Parse(&cli,
		kong.Name("ctctl"),
		kong.Description("Control client for the currenttask daemon"))

	c, err := client.New(cli.Socket)
	if err != nil {
		exitErr(err)
	}

	switch parsed.Command() {
	case "status":
		result, err := c.Status(ctx)
		if err != nil {
			exitErr(err)
		}
		if cli.JSON {
			printJSON(result)
			return
		}
		snap := result.Snapshot
		fmt.Printf("status:   %s\n", snap.Status)
		fmt.Printf("message:  %s\n", snap.Message)
		fmt.Printf("nagging:  %t\n", snap.NaggingEnabled)
		fmt.Printf("downtime: %t\n", snap.DowntimeEnabled)
		fmt.Printf("in status: %ds, since ok: %ds\n", snap.SecondsInCurrentStatus, snap.SecondsSinceOkStatus)
		fmt.Printf("current tasks: %d, overdue with time: %d\n", snap.NumberMarkedCurrent, snap.NumberOverdueWithTime)
	case "explain":
		result, err := c.Explain(ctx)
		if err != nil {
			exitErr(err)
		}
		if cli.JSON {
			printJSON(result)
			return
		}
		if len(result.Rules) == 0 {
			fmt.Println("no rules configured")
			return
		}
		for _, rule := range result.Rules {
			header := fmt.Sprintf("%s[%d] matched=%t", rule.List, rule.Index, rule.Matched)
			if rule.ResultingStatus != "" {
				header += fmt.Sprintf(" -> %s", rule.ResultingStatus)
			}
			fmt.Println(header)
			for _, line := range rule.Summary {
				fmt.Printf("  %s\n", line)
			}
		}
	case "reload":
		if err := c.Reload(ctx); err != nil {
			exitErr(err)
		}
		fmt.Println("reloaded")
	default:
		exitErr(fmt.Errorf("unknown command %q", parsed.Command()))
	}
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		exitErr(err)
	}
}

func exitErr(err error) {
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
