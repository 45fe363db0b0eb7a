package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/RichardoC/Chat-i/internal/chat"
)

const replHelp = `commands:
  /new              start a new conversation
  /list             list conversations (active marked with *)
  /select <id>      switch to a conversation
  /rename <title>   rename the active conversation
  /delete [id]      delete a conversation (default: active)
  /clear            delete all history conversations
  /history          reload history from the backend
  /help             show this help
  /quit             exit
anything else is sent to the assistant`

// runREPL drives an interactive session: plain lines are questions, lines
// starting with "/" are sidebar-style commands.
func runREPL(ctx context.Context) error {
	svc := newService()

	if err := svc.LoadHistory(ctx); err != nil {
		// Degraded but usable: the session just starts without history.
		fmt.Fprintf(os.Stderr, "warning: could not load history: %v\n", err)
	}
	fmt.Printf("loaded %d conversation(s). Type /help for commands.\n", svc.Store().Len())

	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "/") {
			if quit := runCommand(ctx, svc, line); quit {
				break
			}
			continue
		}

		// Failures surface in the transcript as assistant messages, so the
		// error value is only logged (the service does that).
		msg, _ := svc.Send(ctx, line)
		if msg.Content != "" {
			fmt.Printf("assistant: %s\n", msg.Content)
		}
	}
	return scanner.Err()
}

func runCommand(ctx context.Context, svc *chat.Service, line string) (quit bool) {
	cmd, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)

	switch cmd {
	case "/quit", "/exit":
		return true

	case "/help":
		fmt.Println(replHelp)

	case "/new":
		conv := svc.NewChat()
		fmt.Printf("started %s\n", conv.ID)

	case "/list":
		active := svc.Store().ActiveID()
		for _, conv := range svc.Store().Conversations() {
			marker := " "
			if conv.ID == active {
				marker = "*"
			}
			fmt.Printf("%s %s\t%s\n", marker, conv.ID, conv.Title)
		}

	case "/select":
		if arg == "" {
			fmt.Println("usage: /select <id>")
			break
		}
		svc.SelectConversation(arg)

	case "/rename":
		id := svc.Store().ActiveID()
		if id == "" || arg == "" {
			fmt.Println("usage: /rename <title> (with an active conversation)")
			break
		}
		svc.RenameConversation(id, arg)

	case "/delete":
		id := arg
		if id == "" {
			id = svc.Store().ActiveID()
		}
		if id == "" {
			fmt.Println("usage: /delete <id>")
			break
		}
		if err := svc.DeleteConversation(ctx, id); err != nil {
			fmt.Fprintf(os.Stderr, "delete failed: %v\n", err)
		}

	case "/clear":
		if err := svc.ClearHistory(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "clear incomplete: %v\n", err)
		}

	case "/history":
		if err := svc.LoadHistory(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "history load failed: %v\n", err)
		}

	default:
		fmt.Printf("unknown command %q, try /help\n", cmd)
	}
	return false
}
