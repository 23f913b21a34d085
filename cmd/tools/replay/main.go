package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"strings"

	"bmxfeed/internal/client"
	"bmxfeed/internal/obs"
	"bmxfeed/internal/recorder"
	"bmxfeed/internal/response"
)

func main() {
	files := flag.String("files", "", "Comma separated capture files, replayed in order")
	delimiter := flag.String("delimiter", recorder.DefaultDelimiter, "Record delimiter")
	encoding := flag.String("encoding", "", "Text encoding of the files (default utf-8)")
	verbose := flag.Bool("verbose", false, "Print trades, quotes and unhandled frames")
	quiet := flag.Bool("quiet", false, "Do not log router events")
	flag.Parse()

	cfg := recorder.PlaybackConfig{
		Files:     splitList(*files),
		Delimiter: *delimiter,
		Encoding:  *encoding,
	}
	pb, err := recorder.NewPlayback(cfg)
	if err != nil {
		log.Fatalf("playback init failed: %v", err)
	}

	var logger obs.Logger = obs.Logs{}
	if *quiet {
		logger = obs.Discard{}
	}
	metrics := obs.NewMetrics()
	cli, err := client.New(pb, client.WithLogger(logger), client.WithMetrics(metrics))
	if err != nil {
		log.Fatalf("client init failed: %v", err)
	}

	if *verbose {
		hub := cli.Streams()
		hub.Trades.Subscribe(func(row response.Row[response.Trade]) {
			t := row.Data
			fmt.Printf("trade  %s %s %s %d@%s\n", t.Timestamp.Format("15:04:05.000"), t.Symbol, t.Side, t.Size, t.Price)
		})
		hub.Quotes.Subscribe(func(row response.Row[response.Quote]) {
			q := row.Data
			fmt.Printf("quote  %s %s %d@%s / %d@%s\n", q.Timestamp.Format("15:04:05.000"), q.Symbol, q.BidSize, q.BidPrice, q.AskSize, q.AskPrice)
		})
		hub.Unhandled.Subscribe(func(u response.UnhandledFrame) {
			fmt.Printf("unhandled seq=%d %.80s\n", u.Seq, u.Text)
		})
	}

	if err := cli.Start(context.Background()); err != nil {
		log.Fatalf("playback run failed: %v", err)
	}

	s := metrics.Snapshot()
	fmt.Printf("files=%d frames=%d empty=%d unhandled=%d malformed=%d panics=%d dispatch_avg=%s dispatch_max=%s\n",
		len(pb.Files()), s.Frames, s.Empty, s.Unhandled, s.Malformed, s.Panics, s.DispatchLatency.Avg, s.DispatchLatency.Max)
	for _, kind := range s.HandledKinds() {
		fmt.Printf("  %-16s %d\n", kind, s.Handled[kind])
	}
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
