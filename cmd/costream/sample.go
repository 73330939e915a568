package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chronologos/costream/internal/config"
	"github.com/chronologos/costream/internal/protocol"
	"github.com/chronologos/costream/internal/termout"
	"github.com/chronologos/costream/internal/transport"
)

const samplePath = "src/main.go"

// runSample writes a short broadcast session as a frame stream, suitable as
// input for `costream inspect`.
func runSample(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("sample", flag.ContinueOnError)
	compress := fs.Int("compress", config.Default().Terminal.CompressThreshold, "compress terminal output chunks of at least n bytes (0 disables)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	out := stdout
	if fs.NArg() > 0 && fs.Arg(0) != "-" {
		f, err := os.Create(fs.Arg(0))
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}

	frames, err := sampleSession(*compress)
	if err != nil {
		return err
	}
	bw := bufio.NewWriter(out)
	for _, f := range frames {
		if err := transport.WriteFrame(bw, f); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func sampleSession(compressThreshold int) ([][]byte, error) {
	opts := termout.OptionsFrom(config.Default().Terminal)
	opts.CompressThreshold = compressThreshold
	p := termout.NewProducer(opts)

	fileID := protocol.FileIDFromPath(samplePath)
	host := protocol.ChatAuthor{ID: "u1", Username: "host", BadgeIDs: []string{"broadcaster"}}
	const term protocol.TerminalID = 1

	var frames [][]byte
	steps := []func() ([]byte, error){
		func() ([]byte, error) {
			return protocol.EncodeControl(protocol.Hello{V: 1, Protocol: protocol.Version, Client: "vscode"})
		},
		func() ([]byte, error) {
			return protocol.EncodeControl(protocol.FileInfo{FileID: fileID, Path: samplePath, DisplayName: "main.go"})
		},
		func() ([]byte, error) {
			return protocol.EncodeCode(protocol.CodeSnapshot{FileID: fileID, State: []byte{0x01, 0x00, 0x00}})
		},
		func() ([]byte, error) {
			sel := protocol.Selection{Anchor: protocol.Position{Line: 3, Ch: 1}, Head: protocol.Position{Line: 3, Ch: 9}}
			return protocol.EncodeControl(protocol.Cursor{FileID: fileID, Cursors: []protocol.Selection{sel}})
		},
		func() ([]byte, error) {
			return protocol.EncodeChat(protocol.NewUserMessage(host, "welcome in"))
		},
		func() ([]byte, error) {
			return p.Open(protocol.TerminalOpen{ID: term, Name: "Terminal 1", Cols: 80, Rows: 24})
		},
		func() ([]byte, error) {
			return p.ExecStart(term, "go test ./...", "/src")
		},
		func() ([]byte, error) {
			return p.Output(term, protocol.StreamStdout, []byte(strings.Repeat("ok  \tgithub.com/example/pkg\t0.012s\n", 200)), false)
		},
		func() ([]byte, error) {
			return p.Output(term, protocol.StreamStderr, []byte("PASS\n"), true)
		},
		func() ([]byte, error) {
			code := int32(0)
			return p.ExecEnd(term, &code)
		},
		func() ([]byte, error) {
			return p.Snapshot()
		},
		func() ([]byte, error) {
			return p.Close(term, nil, "")
		},
		func() ([]byte, error) {
			return protocol.EncodeAudio(protocol.GrantMic{UserID: "u2"})
		},
	}
	for i, step := range steps {
		f, err := step()
		if err != nil {
			return nil, fmt.Errorf("sample frame %d: %w", i+1, err)
		}
		frames = append(frames, f)
	}
	return frames, nil
}
