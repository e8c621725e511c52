package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"syscall"
	"time"

	"github.com/stemsi/exstem-quiz/internal/i18n"
	"github.com/stemsi/exstem-quiz/internal/model"
	"github.com/stemsi/exstem-quiz/internal/quiz"
	"github.com/stemsi/exstem-quiz/internal/response"
	"github.com/stemsi/exstem-quiz/internal/service"
	"golang.org/x/term"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp    = errors.New("help provided")
	errInvalid = errors.New("draft is invalid")
)

// quizAPI is the subset of quizclient.Client the commands use.
type quizAPI interface {
	Create(ctx context.Context, p model.QuizPayload) (*model.Quiz, error)
	Update(ctx context.Context, id string, p model.QuizPayload) (*model.Quiz, error)
	GetByID(ctx context.Context, id string) (*model.Quiz, error)
	GetAll(ctx context.Context, f model.QuizFilter) ([]model.Quiz, *response.Pagination, error)
	UpdateStatus(ctx context.Context, id string, active bool) (*model.Quiz, error)
	Delete(ctx context.Context, id string) error
}

type commandLine struct {
	out    io.Writer
	tr     *i18n.Translator
	auth   *service.AuthService
	newAPI func(token string) quizAPI
	token  string
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  new      -file FILE                      - write an empty draft with one question")
	fmt.Fprintln(cli.out, "  validate -file FILE [-lang LANG]         - check a draft against the builder rules")
	fmt.Fprintln(cli.out, "  push     -file FILE [-id ID] [-lang LANG] - validate then create or update a quiz")
	fmt.Fprintln(cli.out, "  get      -id ID                          - print a quiz as JSON")
	fmt.Fprintln(cli.out, "  list     [-search S] [-active BOOL]      - list quizzes")
	fmt.Fprintln(cli.out, "  status   -id ID -active BOOL             - show or hide a quiz for students")
	fmt.Fprintln(cli.out, "  delete   -id ID                          - delete a quiz")
	fmt.Fprintln(cli.out, "  token    -type teacher|student -user N   - mint a development token")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	fs := flag.NewFlagSet(args[1], flag.ContinueOnError)
	fs.SetOutput(cli.out)
	file := fs.String("file", "", "Path to a quiz draft in JSON.")
	id := fs.String("id", "", "Quiz id.")
	lang := fs.String("lang", "", "Language for validation messages (en, id, fr).")
	search := fs.String("search", "", "Title search.")
	active := fs.String("active", "", "true or false.")
	tokenType := fs.String("type", "teacher", "Token type: teacher or student.")
	user := fs.Int("user", 0, "User id embedded in the token.")
	if err := fs.Parse(args[2:]); err != nil {
		return errHelp
	}

	switch args[1] {
	case "new":
		if *file == "" {
			fs.Usage()
			return errHelp
		}
		return cli.newDraft(*file)
	case "validate":
		if *file == "" {
			fs.Usage()
			return errHelp
		}
		_, err := cli.validate(*file, *lang)
		return err
	case "push":
		if *file == "" {
			fs.Usage()
			return errHelp
		}
		return cli.push(ctx, *file, *id, *lang)
	case "get":
		if *id == "" {
			fs.Usage()
			return errHelp
		}
		return cli.get(ctx, *id)
	case "list":
		f := model.QuizFilter{Search: *search}
		if *active != "" {
			v, err := parseBool(*active)
			if err != nil {
				return err
			}
			f.IsActive = &v
		}
		return cli.list(ctx, f)
	case "status":
		if *id == "" || *active == "" {
			fs.Usage()
			return errHelp
		}
		v, err := parseBool(*active)
		if err != nil {
			return err
		}
		return cli.status(ctx, *id, v)
	case "delete":
		if *id == "" {
			fs.Usage()
			return errHelp
		}
		return cli.delete(ctx, *id)
	case "token":
		if *user <= 0 {
			fs.Usage()
			return errHelp
		}
		return cli.mintToken(service.TokenType(*tokenType), *user)
	default:
		cli.printUsage()
		return errHelp
	}
}

func (cli *commandLine) newDraft(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	}
	return writeJSON(path, quiz.NewDraft().Draft())
}

// validate loads the draft and prints either "ok" or the first violated rule.
func (cli *commandLine) validate(path, lang string) (*model.Quiz, error) {
	draft, err := readDraft(path)
	if err != nil {
		return nil, err
	}
	if verr := quiz.Validate(draft); verr != nil {
		msg := cli.tr.T(lang, verr.Key, quiz.FallbackMessage(verr.Key), verr.Params()...)
		fmt.Fprintln(cli.out, msg)
		return nil, errInvalid
	}
	fmt.Fprintln(cli.out, "ok")
	return draft, nil
}

// push never rewrites the draft file, so a failed push leaves it for another try.
func (cli *commandLine) push(ctx context.Context, path, id, lang string) error {
	draft, err := cli.validate(path, lang)
	if err != nil {
		return err
	}
	api, err := cli.api()
	if err != nil {
		return err
	}

	payload := quiz.BuildSubmissionPayload(draft)
	if id == "" {
		id = draft.ID
	}

	var saved *model.Quiz
	if id == "" {
		saved, err = api.Create(ctx, payload)
	} else {
		saved, err = api.Update(ctx, id, payload)
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "saved %s (%d questions)\n", saved.ID, len(saved.Questions))
	return nil
}

func (cli *commandLine) get(ctx context.Context, id string) error {
	api, err := cli.api()
	if err != nil {
		return err
	}
	q, err := api.GetByID(ctx, id)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(cli.out)
	enc.SetIndent("", "  ")
	return enc.Encode(q)
}

func (cli *commandLine) list(ctx context.Context, f model.QuizFilter) error {
	api, err := cli.api()
	if err != nil {
		return err
	}
	quizzes, page, err := api.GetAll(ctx, f)
	if err != nil {
		return err
	}
	for _, q := range quizzes {
		state := "hidden"
		if q.IsActive {
			state = "active"
		}
		fmt.Fprintf(cli.out, "%s\t%s\t%s\t%d questions\n", q.ID, state, q.Title, len(q.Questions))
	}
	if page != nil {
		fmt.Fprintf(cli.out, "page %d/%d, %d total\n", page.Page, page.TotalPages, page.TotalItems)
	}
	return nil
}

func (cli *commandLine) status(ctx context.Context, id string, active bool) error {
	api, err := cli.api()
	if err != nil {
		return err
	}
	q, err := api.UpdateStatus(ctx, id, active)
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "%s is_active=%t\n", q.ID, q.IsActive)
	return nil
}

func (cli *commandLine) delete(ctx context.Context, id string) error {
	api, err := cli.api()
	if err != nil {
		return err
	}
	if err := api.Delete(ctx, id); err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "deleted %s\n", id)
	return nil
}

func (cli *commandLine) mintToken(tokenType service.TokenType, userID int) error {
	var perms []string
	if tokenType == service.TokenTypeTeacher {
		perms = model.PermissionCodes()
	}
	tok, err := cli.auth.GenerateToken(tokenType, userID, perms)
	if err != nil {
		return err
	}
	fmt.Fprintln(cli.out, tok)
	return nil
}

// api builds the client, prompting for a token when none is configured.
func (cli *commandLine) api() (quizAPI, error) {
	if cli.token == "" {
		fmt.Fprint(cli.out, "Enter API token: ")
		raw, err := readPasswordFunc(int(syscall.Stdin))
		fmt.Fprintln(cli.out)
		if err != nil {
			return nil, fmt.Errorf("read token: %w", err)
		}
		cli.token = strings.TrimSpace(string(raw))
		if cli.token == "" {
			return nil, errors.New("an API token is required")
		}
	}
	return cli.newAPI(cli.token), nil
}

func readDraft(path string) (*model.Quiz, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var q model.Quiz
	if err := json.Unmarshal(raw, &q); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &q, nil
}

func writeJSON(path string, v any) error {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(raw, '\n'), 0o644)
}

func parseBool(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "true", "1", "yes":
		return true, nil
	case "false", "0", "no":
		return false, nil
	}
	return false, fmt.Errorf("invalid boolean %q", s)
}
