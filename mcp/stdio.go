package mcp

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"sync"
)

// ServeStdio runs the server over a line-framed stdio transport: one
// JSON-RPC message per line in, one per line out. It returns when the
// input closes or the context is canceled.
func ServeStdio(ctx context.Context, server *Server, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), maxBodyBytes)

	var writeMu sync.Mutex
	write := func(data []byte) error {
		writeMu.Lock()
		defer writeMu.Unlock()
		if _, err := out.Write(data); err != nil {
			return err
		}
		_, err := out.Write([]byte("\n"))
		return err
	}

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}

		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		resp := server.HandleMessage(ctx, line)
		if resp == nil {
			continue
		}
		if err := write(resp); err != nil {
			return fmt.Errorf("write response: %w", err)
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	return nil
}
