package main

import (
	"bufio"
	"context"
	"errors"
	"io"
	"log"
	"net"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/jinjor/lissa-juice/src/audio"
	"golang.org/x/sync/errgroup"
)

// serveIPC accepts one controller at a time until ctx is done.
func serveIPC(ctx context.Context, sockFileName string, a *audio.Audio) error {
	os.Remove(sockFileName)
	listener, err := new(net.ListenConfig).Listen(ctx, "unix", sockFileName)
	if err != nil {
		return err
	}
	defer func() {
		log.Println("Closing IPC...")
		err := listener.Close()
		if err != nil && !errors.Is(err, net.ErrClosed) {
			log.Printf("error while closing listener: %v", err)
		}
		os.Remove(sockFileName)
	}()
	go func() {
		<-ctx.Done()
		listener.Close()
	}()
	log.Printf("start listening on %s...\n", sockFileName)
	for {
		conn, err := listener.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		log.Println("controller connected")
		if err := handleConnection(ctx, conn, a); err != nil {
			log.Printf("[WARN] connection: %v\n", err)
		}
	}
}

func handleConnection(ctx context.Context, conn net.Conn, a *audio.Audio) error {
	defer func() {
		err := conn.Close()
		if err != nil && !errors.Is(err, net.ErrClosed) {
			log.Printf("error while closing connection: %v", err)
		}
	}()
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		// unblock the reader when the writer fails or we shut down
		<-ctx.Done()
		conn.Close()
		return nil
	})
	g.Go(func() error {
		err := receiveCommands(ctx, conn, a.CommandCh)
		if err == nil {
			err = io.EOF
		}
		return err
	})
	g.Go(func() error {
		return sendReports(ctx, conn, a)
	})
	err := g.Wait()
	if err == io.EOF || errors.Is(err, net.ErrClosed) {
		return nil
	}
	return err
}

func receiveCommands(ctx context.Context, conn net.Conn, commandCh chan<- []string) error {
	reader := bufio.NewReader(conn)
	var line []byte
loop:
	for {
		select {
		case <-ctx.Done():
			log.Println("Connection interrupted")
			break loop
		default:
		}
		next, isPrefix, err := reader.ReadLine()
		if err == io.EOF {
			break loop
		}
		if err != nil {
			if ctx.Err() != nil {
				break loop
			}
			return err
		}
		line = append(line, next...)
		if isPrefix {
			continue
		}
		if len(strings.TrimSpace(string(line))) == 0 {
			line = line[:0]
			continue
		}
		command, err := parseCommand(string(line))
		if err != nil {
			log.Printf("[WARN] %v\n", err)
			line = line[:0]
			continue
		}
		select {
		case commandCh <- command:
		case <-ctx.Done():
			break loop
		}
		log.Printf("received: %s\n", string(line))
		line = line[:0]
	}
	log.Println("receiveCommands() ended.")
	return nil
}

func parseCommand(line string) ([]string, error) {
	lineStr := strings.Fields(line)
	for i, item := range lineStr {
		escaped, err := url.QueryUnescape(item)
		if err != nil {
			return nil, err
		}
		lineStr[i] = escaped
	}
	return lineStr, nil
}

func sendReports(ctx context.Context, conn net.Conn, a *audio.Audio) error {
	t := time.NewTicker(time.Second / 60)
	defer t.Stop()
	// a fresh controller always gets the full state first
	a.Changes.Add("data")
loop:
	for {
		select {
		case <-ctx.Done():
			log.Println("sendReports() interrupted")
			break loop
		case <-t.C:
			if !a.Changes.Has("data") {
				continue
			}
			a.Changes.Delete("data")
			s := "state " + string(a.ToJSON())
			if _, err := conn.Write([]byte(s + "\n")); err != nil {
				if ctx.Err() != nil {
					break loop
				}
				return err
			}
		}
	}
	log.Println("sendReports() ended.")
	return nil
}
