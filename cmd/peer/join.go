package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"strings"
	"sync"
	"syscall"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"github.com/dkeye/jamhub/internal/adapters/rtc"
	"github.com/dkeye/jamhub/internal/adapters/wsclient"
	"github.com/dkeye/jamhub/internal/config"
	"github.com/dkeye/jamhub/internal/mesh"
	"github.com/dkeye/jamhub/internal/protocol"
)

func newJoinCmd() *cobra.Command {
	v := viper.New()
	cmd := &cobra.Command{
		Use:   "join",
		Short: "Join a room and chat from stdin",
		Long: `Join a room. Every stdin line is sent as a chat message, except:
  /mic     toggle microphone
  /cam     toggle camera
  /peers   list participants
  /leave   leave and exit`,
		Example: "  jamhub-peer join --server ws://localhost:8080/api/ws/signal --room blues --name A",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadPeer(v)
			if err != nil {
				return err
			}
			if cfg.Verbose {
				zerolog.SetGlobalLevel(zerolog.DebugLevel)
			}
			return runJoin(cmd.Context(), cfg, os.Stdin, cmd.OutOrStdout())
		},
	}

	f := cmd.Flags()
	f.String("server", "", "relay signaling URL")
	f.String("room", "", "room to join")
	f.String("name", "", "display name")
	f.String("codec", "", "wire codec: json or msgpack")
	f.Bool("muted", false, "join with microphone off")
	f.Bool("camera-off", false, "join with camera off")
	f.Bool("no-audio", false, "pretend no microphone is present")
	f.Bool("no-video", false, "pretend no camera is present")
	f.BoolP("verbose", "v", false, "debug logging")
	for key, flag := range map[string]string{
		"server": "server", "room": "room", "name": "name", "codec": "codec",
		"muted": "muted", "camera_off": "camera-off", "no_audio": "no-audio",
		"no_video": "no-video", "verbose": "verbose",
	} {
		_ = v.BindPFlag(key, f.Lookup(flag))
	}
	return cmd
}

func runJoin(parent context.Context, cfg *config.Peer, in io.Reader, out io.Writer) error {
	ctx, cancel := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	ctx, end := context.WithCancelCause(ctx)
	defer end(nil)

	ice, err := cfg.ICE.WebRTC()
	if err != nil {
		return err
	}
	codec, err := protocol.CodecByName(cfg.Codec)
	if err != nil {
		return err
	}
	api, err := rtc.NewAPI()
	if err != nil {
		return fmt.Errorf("webrtc api: %w", err)
	}

	sinks := rtc.NewSinkSet()
	o := mesh.New(mesh.Options{
		Dial:       wsclient.Dialer(cfg.Server, codec),
		Transports: rtc.NewTransportFactory(api, ice),
		Media:      rtc.SyntheticSource{NoAudio: cfg.NoAudio, NoVideo: cfg.NoVideo},
		Sinks:      sinks.Factory(),
	})

	var (
		mu      sync.Mutex
		printed int
	)
	o.OnChange(func() {
		mu.Lock()
		defer mu.Unlock()
		view := o.Snapshot()
		if len(view.Chat) < printed {
			printed = 0
		}
		for _, m := range view.Chat[printed:] {
			fmt.Fprintf(out, "[%s] %s\n", m.DisplayName, m.Body)
		}
		printed = len(view.Chat)
		if view.Rejected != nil {
			end(view.Rejected)
		}
	})

	if err := o.Join(ctx, cfg.Name, cfg.Room, mesh.JoinOptions{
		InitialMuted:     cfg.Muted,
		InitialCameraOff: cfg.CameraOff,
	}); err != nil {
		return err
	}
	defer o.Leave()

	lines := readLines(ctx, in)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		for {
			select {
			case <-gctx.Done():
				return nil
			case line, ok := <-lines:
				if !ok {
					return nil
				}
				if done := command(o, sinks, line, out); done {
					return nil
				}
			}
		}
	})
	if err := g.Wait(); err != nil {
		return err
	}
	if err := context.Cause(ctx); errors.Is(err, mesh.ErrJoinRejected) {
		return err
	}
	return nil
}

// readLines feeds stdin lines until in is exhausted or ctx ends. A read
// already blocked on a terminal only returns with the next line.
func readLines(ctx context.Context, in io.Reader) <-chan string {
	lines := make(chan string)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(in)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
	}()
	return lines
}

// command handles one stdin line and reports whether the session should end.
func command(o *mesh.Orchestrator, sinks *rtc.SinkSet, line string, out io.Writer) bool {
	switch strings.TrimSpace(line) {
	case "/leave":
		return true
	case "/mic":
		st := o.ToggleMic()
		fmt.Fprintf(out, "mic %s\n", onOff(!st.Muted))
	case "/cam":
		st := o.ToggleCamera()
		fmt.Fprintf(out, "camera %s\n", onOff(!st.CameraOff))
	case "/peers":
		printPeers(o.Snapshot(), sinks, out)
	default:
		err := o.SendChat(line)
		if errors.Is(err, mesh.ErrEmptyMessage) {
			return false
		}
		if err != nil {
			log.Warn().Err(err).Str("module", "peer").Msg("chat not sent")
		}
	}
	return false
}

func printPeers(v mesh.View, sinks *rtc.SinkSet, out io.Writer) {
	fmt.Fprintf(out, "room %s as %s (mic %s, camera %s", v.RoomID, v.DisplayName,
		onOff(v.Local.MicEnabled), onOff(v.Local.CameraEnabled))
	if v.Local.Degraded {
		fmt.Fprint(out, ", degraded media")
	}
	if !v.RelayConnected {
		fmt.Fprint(out, ", relay lost")
	}
	fmt.Fprintln(out, ")")

	ids := lo.Keys(v.Peers)
	sort.Slice(ids, func(i, j int) bool { return v.Peers[ids[i]].DisplayName < v.Peers[ids[j]].DisplayName })
	if len(ids) == 0 {
		fmt.Fprintln(out, "  nobody else here")
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Name", "State", "Muted", "Camera off", "RTP", "Lost"})
	for _, id := range ids {
		p := v.Peers[id]
		row := table.Row{p.DisplayName, p.State.String(), p.Muted, p.CameraOff, "-", "-"}
		if st, ok := sinks.Stats(id); ok && st.Tracks > 0 {
			row[4], row[5] = st.Packets, st.Lost
		}
		t.AppendRow(row)
	}
	t.Render()
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
