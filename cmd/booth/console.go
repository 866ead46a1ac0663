package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"agora/contexts/governance/voting-booth/adapters/remote"
	"agora/contexts/governance/voting-booth/application/booth"
	"agora/contexts/governance/voting-booth/application/commands"
	"agora/contexts/governance/voting-booth/domain/entities"
	domainerrors "agora/contexts/governance/voting-booth/domain/errors"
	"agora/contexts/governance/voting-booth/ports"
)

const helpText = `commands:
  show                      print the active session and current ballot
  select <item> <option>    choose the option for a position item
  toggle <item> <option>    add or remove an option on a multi item
  abstain <item>            abstain on a multi item (repeating it keeps the abstention)
  submit                    cast the ballot
  votes                     list vote records you can read
  quit                      leave the booth
`

// console is the line-oriented presentation layer. It is also the booth's
// notifier, so output from the watch loop and from commands share one lock.
type console struct {
	in  io.Reader
	mu  sync.Mutex
	out io.Writer
}

func newConsole(in io.Reader, out io.Writer) *console {
	return &console{in: in, out: out}
}

func (c *console) printf(format string, args ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.out, format, args...)
}

func (c *console) Notify(_ context.Context, n ports.Notification) {
	switch n.Kind {
	case ports.NotificationEntered, ports.NotificationSessionChanged:
		c.printState(n.State)
	case ports.NotificationSessionDeferred:
		c.printf("the active session changed; it will be applied once your submission finishes\n")
	case ports.NotificationLookupFailed:
		c.printf("session lookup failed, retrying on the next poll: %v\n", n.Err)
	case ports.NotificationSubmitted:
		c.printf("ballot submitted\n")
	case ports.NotificationSubmissionFailed:
		c.printf("submission failed: %v\n", n.Err)
	}
}

func (c *console) printState(state entities.ClientState) {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch state.Phase {
	case entities.PhaseUninitialized:
		fmt.Fprintln(c.out, "not in the booth yet")
	case entities.PhaseWaiting:
		if state.HasVoted {
			fmt.Fprintln(c.out, "you have already voted in this session; waiting for the next one")
		} else {
			fmt.Fprintln(c.out, "no session is open; waiting")
		}
	case entities.PhaseSubmitted:
		fmt.Fprintln(c.out, "your ballot is in; waiting for the next session")
	case entities.PhaseVoting:
		session := state.Session
		fmt.Fprintf(c.out, "session %s: %s\n", session.SessionID, session.Name)
		for _, item := range session.Items {
			marker := " "
			if state.Ballot.IsComplete(item.ItemID) {
				marker = "x"
			}
			fmt.Fprintf(c.out, "[%s] %s %s (%s, choose %d)\n", marker, item.ItemID, item.Title, item.Kind, item.RequiredSelections())
			selected := state.Ballot.Selections(item.ItemID)
			for _, option := range item.Options {
				fmt.Fprintf(c.out, "     %s %s %s\n", pick(selected, option.OptionID), option.OptionID, option.Value)
			}
			if item.Kind == entities.ItemKindMulti {
				fmt.Fprintf(c.out, "     %s %s\n", pick(selected, entities.Abstain), entities.Abstain)
			}
		}
	}
}

func pick(selected []string, optionID string) string {
	for _, value := range selected {
		if value == optionID {
			return "*"
		}
	}
	return "-"
}

// run reads commands until quit, EOF or ctx is done.
func (c *console) run(ctx context.Context, b *booth.Booth, client *remote.Client) error {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(c.in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	c.printf("%s", helpText)
	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			if quit := c.handle(ctx, b, client, strings.Fields(line)); quit {
				return nil
			}
		}
	}
}

func (c *console) handle(ctx context.Context, b *booth.Booth, client *remote.Client, fields []string) bool {
	if len(fields) == 0 {
		return false
	}
	var err error
	switch fields[0] {
	case "quit", "exit":
		return true
	case "help":
		c.printf("%s", helpText)
	case "show":
		c.printState(b.State())
	case "select":
		if len(fields) != 3 {
			c.printf("usage: select <item> <option>\n")
			return false
		}
		if err = b.SelectSingle(fields[1], fields[2]); err == nil {
			c.printState(b.State())
		}
	case "toggle":
		if len(fields) != 3 {
			c.printf("usage: toggle <item> <option>\n")
			return false
		}
		if err = b.ToggleMulti(fields[1], fields[2]); err == nil {
			c.printState(b.State())
		}
	case "abstain":
		if len(fields) != 2 {
			c.printf("usage: abstain <item>\n")
			return false
		}
		err = c.abstain(b, fields[1])
	case "submit":
		var result commands.SubmitResult
		result, err = b.Submit(ctx)
		var partial *domainerrors.PartialSubmissionError
		if errors.As(err, &partial) {
			c.printf("%d of %d selections were recorded before the failure\n", partial.Committed, partial.Intended)
		} else if err == nil {
			c.printf("%d vote records created\n", result.Committed)
		}
	case "votes":
		records, listErr := client.ListMyVotes(ctx, b.ElectionID())
		err = listErr
		for _, record := range records {
			c.printf("%s  session=%s item=%s option=%s weight=%g\n",
				record.CastAt.Format("2006-01-02 15:04:05"), record.SessionID, record.ItemID, record.OptionID, record.Weight)
		}
	default:
		c.printf("unknown command %q, try help\n", fields[0])
	}
	if err != nil {
		c.printf("error: %v\n", err)
	}
	return false
}

func (c *console) abstain(b *booth.Booth, itemID string) error {
	state := b.State()
	if state.Session == nil {
		return domainerrors.ErrNotVoting
	}
	item, ok := state.Session.Item(itemID)
	if !ok {
		return domainerrors.ErrItemNotFound
	}
	if item.Kind != entities.ItemKindMulti {
		return domainerrors.ErrAbstainNotAllowed
	}
	if state.Ballot != nil && isAbstaining(state.Ballot.Selections(item.ItemID)) {
		c.printf("already abstaining on %s; toggle an option to vote instead\n", item.ItemID)
		return nil
	}
	if err := b.ToggleMulti(itemID, entities.Abstain); err != nil {
		return err
	}
	c.printState(b.State())
	return nil
}

func isAbstaining(selected []string) bool {
	return len(selected) == 1 && selected[0] == entities.Abstain
}
