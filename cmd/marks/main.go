// Command marks is an interactive session client. It keeps a live local
// copy of one user's bookmark list, applies adds and removals
// optimistically, and follows the server's change feed so edits from
// other sessions show up as they happen.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/marksync/marks/internal/client"
	"github.com/marksync/marks/internal/domain"
	"github.com/marksync/marks/internal/engine"
	"github.com/marksync/marks/internal/logger"
)

func main() {
	server := flag.String("server", "http://localhost:8080", "base URL of the marksd server")
	user := flag.String("user", "", "user id to sync bookmarks for (required)")
	logLevel := flag.String("log-level", "warn", "log level: debug, info, warn, error")
	flag.Parse()

	if *user == "" {
		flag.Usage()
		os.Exit(2)
	}

	lg := logger.New(*logLevel, true)

	store, err := client.NewStore(*server)
	if err != nil {
		log.Fatalf("❌ %v", err)
	}
	feed, err := client.NewFeed(*server, lg)
	if err != nil {
		log.Fatalf("❌ %v", err)
	}

	eng := engine.New(*user, store, feed, lg)
	if err := eng.Start(context.Background()); err != nil {
		log.Fatalf("❌ failed to start: %v", err)
	}
	defer eng.Stop()

	go printNotices(eng.Notices())

	fmt.Printf("marks: synced as %s (feed %s). Commands: ls, add <url> <title>, rm <id>, quit\n",
		*user, eng.FeedState())

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		cmd, rest, _ := strings.Cut(line, " ")
		switch cmd {
		case "ls":
			printList(eng.Snapshot(), eng.FeedState())
		case "add":
			url, title, ok := strings.Cut(strings.TrimSpace(rest), " ")
			if !ok {
				fmt.Println("usage: add <url> <title>")
				continue
			}
			eng.Create(url, title)
		case "rm":
			id := strings.TrimSpace(rest)
			if id == "" {
				fmt.Println("usage: rm <id>")
				continue
			}
			eng.Delete(id)
		case "quit", "exit":
			return
		default:
			fmt.Printf("unknown command %q\n", cmd)
		}
	}
}

func printList(marks []domain.Bookmark, state engine.FeedState) {
	if state != engine.FeedSubscribed {
		fmt.Printf("(feed %s; list may be stale)\n", state)
	}
	if len(marks) == 0 {
		fmt.Println("no bookmarks")
		return
	}
	for _, b := range marks {
		pending := ""
		if b.IsPlaceholder() {
			pending = " (saving...)"
		}
		fmt.Printf("%-36s  %s  %s%s\n", b.ID, b.URL, b.Title, pending)
	}
}

func printNotices(notices <-chan engine.Notice) {
	for n := range notices {
		switch n.Kind {
		case engine.NoticeValidation:
			fmt.Printf("\n! rejected: %s\n> ", n.Reason)
		case engine.NoticeCreateFailed:
			fmt.Printf("\n! could not save %q (%s); entry removed\n> ", n.URL, n.Reason)
		case engine.NoticeDeleteFailed:
			fmt.Printf("\n! could not delete (%s); entry restored\n> ", n.Reason)
		case engine.NoticeFeedDown:
			fmt.Printf("\n! live updates lost (%s); restart to resync\n> ", n.Reason)
		}
	}
}
