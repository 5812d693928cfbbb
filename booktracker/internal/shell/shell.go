// Package shell is a line-oriented front end for the book list view.
package shell

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/Astemirdum/booktracker/booktracker/internal/booklist"
	"github.com/Astemirdum/booktracker/booktracker/internal/errs"
	"github.com/Astemirdum/booktracker/booktracker/internal/form"
	"github.com/Astemirdum/booktracker/booktracker/internal/loop"
	"github.com/Astemirdum/booktracker/booktracker/internal/model"
	"github.com/Astemirdum/booktracker/booktracker/internal/workflow"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const helpText = `Commands:
  list                     show the filtered books
  reload                   fetch the books again
  search [term]            filter by title, author or genre; empty clears
  status [filter]          filter by status; no filter lists the choices
  add                      open an empty book form
  edit [id]                open the form for a book, or for the book in detail
  view <id>                show book details
  set <field> <value>      set title, author, genre, status or notes
  submit                   save the open form
  cancel                   close the open form or detail
  delete <id>              delete a book
  state                    show what is open
  exit`

type Shell struct {
	log  *zap.Logger
	d    *loop.Dispatcher
	view *booklist.View
	in   io.Reader
	out  io.Writer
}

func New(log *zap.Logger, d *loop.Dispatcher, view *booklist.View, in io.Reader, out io.Writer) *Shell {
	return &Shell{
		log:  log.Named("shell"),
		d:    d,
		view: view,
		in:   in,
		out:  out,
	}
}

// Run reads commands until exit, EOF or ctx is done. Each command runs on
// the dispatcher; Run waits for it before prompting again.
func (s *Shell) Run(ctx context.Context) error {
	lines := make(chan string)
	scanErr := make(chan error, 1)
	go func() {
		sc := bufio.NewScanner(s.in)
		defer func() {
			scanErr <- sc.Err()
			close(lines)
		}()
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	fmt.Fprintln(s.out, "Book tracker. Type 'help' for commands.")
	for {
		fmt.Fprint(s.out, "> ")
		var line string
		select {
		case <-ctx.Done():
			return nil
		case l, ok := <-lines:
			if !ok {
				return <-scanErr
			}
			line = l
		}

		quit := make(chan bool, 1)
		s.d.Post(func() { quit <- s.Exec(line) })
		select {
		case <-ctx.Done():
			return nil
		case q := <-quit:
			if q {
				return nil
			}
		}
	}
}

// Exec runs one command line. It must be called on the loop goroutine and
// reports whether the shell should stop.
func (s *Shell) Exec(line string) bool {
	cmd, arg := split(line)
	switch cmd {
	case "":
	case "help", "?":
		fmt.Fprintln(s.out, helpText)
		fmt.Fprintln(s.out, "Status filters:")
		s.printStatusOptions()
	case "list", "ls", "show":
		s.printList()
	case "reload":
		s.view.List.Reload()
	case "search":
		s.view.List.SetSearchTerm(arg)
		s.printList()
	case "status":
		if arg == "" {
			s.printStatusOptions()
			return false
		}
		f, err := model.ParseStatusFilter(arg)
		if err != nil {
			s.fail(err)
			s.printStatusOptions()
			return false
		}
		s.view.List.SetStatusFilter(f)
		s.printList()
	case "add":
		s.view.Workflow.Add()
		s.printForm()
	case "edit":
		s.edit(arg)
	case "view":
		b, ok := s.book(arg)
		if !ok {
			return false
		}
		s.view.Workflow.View(b)
		s.printDetail(b)
	case "set":
		s.set(arg)
	case "submit", "save":
		s.submit()
	case "cancel", "close":
		s.view.Workflow.Close()
	case "delete", "rm":
		if b, ok := s.book(arg); ok {
			s.view.Workflow.Delete(b)
		}
	case "state":
		fmt.Fprintln(s.out, s.view.Workflow.State())
	case "exit", "quit":
		return true
	default:
		fmt.Fprintf(s.out, "unknown command %q, type 'help'\n", cmd)
	}
	return false
}

func (s *Shell) edit(arg string) {
	if arg == "" {
		if err := s.view.Workflow.EditFromDetail(); err != nil {
			s.fail(err)
			return
		}
		s.printForm()
		return
	}
	b, ok := s.book(arg)
	if !ok {
		return
	}
	s.view.Workflow.Edit(b)
	s.printForm()
}

func (s *Shell) set(arg string) {
	if s.view.Workflow.State().Kind != workflow.FormOpen {
		fmt.Fprintln(s.out, "no form is open, use 'add' or 'edit'")
		return
	}
	name, value := split(arg)
	f, err := form.ParseField(name)
	if err != nil {
		s.fail(err)
		return
	}
	if f == form.FieldStatus {
		value = strings.ToUpper(value)
	}
	if err := s.view.Form.Set(f, value); err != nil {
		s.fail(err)
		return
	}
	if msg := s.view.Form.FieldError(f); msg != "" {
		fmt.Fprintf(s.out, "  ! %s\n", msg)
	}
}

func (s *Shell) submit() {
	if s.view.Workflow.State().Kind != workflow.FormOpen {
		fmt.Fprintln(s.out, "no form is open, use 'add' or 'edit'")
		return
	}
	err := s.view.Form.Submit()
	switch {
	case err == nil:
		fmt.Fprintln(s.out, "saving...")
	case errors.Is(err, errs.ErrValidation):
		s.printForm()
	default:
		s.fail(err)
	}
}

func (s *Shell) book(arg string) (model.Book, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(arg), 10, 64)
	if err != nil {
		fmt.Fprintf(s.out, "expected a book id, got %q\n", arg)
		return model.Book{}, false
	}
	b, ok := s.view.List.Find(id)
	if !ok {
		fmt.Fprintf(s.out, "no book %d in the list, try 'reload'\n", id)
	}
	return b, ok
}

func (s *Shell) fail(err error) {
	fmt.Fprintf(s.out, "error: %v\n", err)
}

// printStatusOptions lists the filter choices and marks the active one.
func (s *Shell) printStatusOptions() {
	current := s.view.List.StatusFilter()
	for _, o := range model.StatusOptions() {
		mark := " "
		if o == current || (current == "" && o == model.StatusAll) {
			mark = "*"
		}
		fmt.Fprintf(s.out, "%s %-12s %s\n", mark, o, o.Label())
	}
}

func (s *Shell) printList() {
	l := s.view.List
	header := fmt.Sprintf("Status: %s", l.StatusFilter().Label())
	if term := l.SearchTerm(); term != "" {
		header += fmt.Sprintf(" | Search: %q", term)
	}
	if l.Loading() {
		header += " | loading..."
	}
	fmt.Fprintln(s.out, header)

	PrintBooks(s.out, l.Filtered())
}

func (s *Shell) printDetail(b model.Book) {
	PrintBook(s.out, b)
}

func (s *Shell) printForm() {
	fc := s.view.Form
	fmt.Fprintf(s.out, "%s\n", fc.Title())
	tw := tabwriter.NewWriter(s.out, 0, 4, 2, ' ', 0)
	for _, f := range form.Fields {
		line := fmt.Sprintf("  %s:\t%s", f, fc.Value(f))
		if msg := fc.FieldError(f); msg != "" {
			line += "\t! " + msg
		}
		fmt.Fprintln(tw, line)
	}
	_ = tw.Flush()
	fmt.Fprintf(s.out, "'set <field> <value>' then 'submit' to %s\n", strings.ToLower(fc.SubmitLabel()))
}

// PrintBooks writes books as a table, or a notice when there are none.
func PrintBooks(w io.Writer, books []model.Book) {
	if len(books) == 0 {
		fmt.Fprintln(w, "No books found")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tAUTHOR\tGENRE\tSTATUS\tADDED")
	for _, b := range books {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n",
			b.ID, b.Title, b.Author, b.Genre, b.Status.Label(), model.FormatListDate(b.CreatedAt))
	}
	_ = tw.Flush()
}

func PrintBook(w io.Writer, b model.Book) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "Title:\t%s\n", b.Title)
	fmt.Fprintf(tw, "Author:\t%s\n", b.Author)
	fmt.Fprintf(tw, "Genre:\t%s\n", b.Genre)
	fmt.Fprintf(tw, "Status:\t%s\n", b.Status.Label())
	if notes := b.NotesText(); notes != "" {
		fmt.Fprintf(tw, "Notes:\t%s\n", notes)
	}
	fmt.Fprintf(tw, "Created:\t%s\n", model.FormatDetailDate(b.CreatedAt))
	fmt.Fprintf(tw, "Updated:\t%s\n", model.FormatDetailDate(b.UpdatedAt))
	_ = tw.Flush()
}

func split(line string) (string, string) {
	line = strings.TrimSpace(line)
	cmd, arg, _ := strings.Cut(line, " ")
	return strings.ToLower(cmd), strings.TrimSpace(arg)
}
