package main

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"go.klb.dev/keyclip/internal/control"
)

func newStatusCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show daemon settings and conversion counters",
		Long: `Displays the running daemon's enabled flag, target colour and loop
statistics.

The request is sent via the local IPC socket unless --addr is given.`,
		Args:    cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE:    func(cmd *cobra.Command, _ []string) error { return runStatus(cmd.OutOrStdout(), v) },
	}

	cmd.Flags().Bool("json", false, "output raw JSON")
	addControlFlags(cmd)

	return cmd
}

func runStatus(out io.Writer, v *viper.Viper) error {
	return withControl(v, func(ctx context.Context, c *control.Client, transport string) error {
		resp, err := c.Status(ctx)
		if err != nil {
			return fmt.Errorf("status: %s", status.Convert(err).Message())
		}
		if v.GetBool("json") {
			buf, err := protojson.MarshalOptions{Multiline: true, Indent: "  "}.Marshal(resp)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, string(buf))
			return nil
		}
		printStatus(out, resp, transport)
		return nil
	})
}

func printStatus(out io.Writer, resp *structpb.Struct, transport string) {
	f := resp.GetFields()
	stats := f["stats"].GetStructValue().GetFields()
	num := func(k string) int64 { return int64(stats[k].GetNumberValue()) }

	enabled := "no"
	if f["enabled"].GetBoolValue() {
		enabled = "yes"
	}

	w := tabwriter.NewWriter(out, 1, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Transport:\t%s\n", transport)
	fmt.Fprintf(w, "Enabled:\t%s\n", enabled)
	fmt.Fprintf(w, "Target:\t%s\n", f["color"].GetStringValue())
	fmt.Fprintf(w, "State:\t%s\n", stats["state"].GetStringValue())
	if t, err := time.Parse(time.RFC3339, f["started_at"].GetStringValue()); err == nil {
		fmt.Fprintf(w, "Running:\tsince %s (%s)\n", t.Local().Format(time.DateTime), fmtAge(t))
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Cycles:\t%d\n", num("cycles"))
	fmt.Fprintf(w, "Converted:\t%d\n", num("converted"))
	fmt.Fprintf(w, "Keyed pixels:\t%d\n", num("keyed_pixels"))
	fmt.Fprintf(w, "Duplicates:\t%d\n", num("duplicates"))
	fmt.Fprintf(w, "Failures:\t%d\n", num("failures"))
	if ts := stats["last_converted"].GetStringValue(); ts != "" {
		if t, err := time.Parse(time.RFC3339Nano, ts); err == nil {
			fmt.Fprintf(w, "Last converted:\t%s\n", fmtAge(t))
		}
	}
	if msg := stats["last_error"].GetStringValue(); msg != "" {
		fmt.Fprintf(w, "Last error:\t%s\n", msg)
	}
	_ = w.Flush()
}

func fmtAge(t time.Time) string {
	age := time.Since(t).Round(time.Second)
	switch {
	case age < time.Minute:
		return fmt.Sprintf("%ds ago", int(age.Seconds()))
	case age < time.Hour:
		return fmt.Sprintf("%dm ago", int(age.Minutes()))
	case age < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(age.Hours()))
	default:
		return t.Local().Format(time.DateTime)
	}
}
