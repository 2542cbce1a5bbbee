package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/sirupsen/logrus"

	restapi "github.com/hedisam/filedrop/client/api/rest"
)

const envServerAddr = "FILEDROP_SERVER"

type Options struct {
	ServerAddr string
	Verbose    bool
}

func main() {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)

	var opts Options
	flags := flag.NewFlagSet("filedrop", flag.ExitOnError)
	flags.StringVar(&opts.ServerAddr, "server-addr", serverAddrDefault(), "FileDrop server address to connect to.")
	flags.BoolVar(&opts.Verbose, "v", false, "Verbose output")
	flags.Usage = func() {
		out := flags.Output()
		_, _ = fmt.Fprintf(out, "Usage: %s [flags] <command> [args]\n\nCommands:\n", flags.Name())
		_, _ = fmt.Fprintln(out, "  upload <path>   upload a local file")
		_, _ = fmt.Fprintln(out, "  list            list stored files")
		_, _ = fmt.Fprintln(out, "  get <name>      print a stored file's content")
		_, _ = fmt.Fprintln(out, "\nFlags:")
		flags.PrintDefaults()
	}
	_ = flags.Parse(os.Args[1:])

	if opts.Verbose {
		logger.SetLevel(logrus.DebugLevel)
	}

	args := flags.Args()
	if len(args) == 0 {
		flags.Usage()
		os.Exit(2)
	}

	client, err := restapi.NewClient(logger, opts.ServerAddr)
	if err != nil {
		logger.WithError(err).Fatal("Failed to create rest client")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	err = run(ctx, client, args, os.Stdout)
	if err != nil {
		var apiErr *restapi.APIError
		if errors.As(err, &apiErr) {
			logger.WithField("status", apiErr.StatusCode).Error(apiErr.Message)
			os.Exit(1)
		}
		if errors.Is(err, errUsage) {
			flags.Usage()
			os.Exit(2)
		}
		logger.WithError(err).Fatal("Command failed")
	}
}

var errUsage = errors.New("invalid usage")

// Client is the subset of the rest client the commands need.
type Client interface {
	Upload(ctx context.Context, name string, content []byte) (*restapi.File, error)
	List(ctx context.Context) ([]restapi.File, error)
	Get(ctx context.Context, name string) (string, error)
}

func run(ctx context.Context, client Client, args []string, out io.Writer) error {
	cmd, args := args[0], args[1:]
	switch cmd {
	case "upload":
		if len(args) != 1 {
			return errUsage
		}
		return upload(ctx, client, args[0], out)
	case "list":
		if len(args) != 0 {
			return errUsage
		}
		return list(ctx, client, out)
	case "get":
		if len(args) != 1 {
			return errUsage
		}
		content, err := client.Get(ctx, args[0])
		if err != nil {
			return err
		}
		_, err = io.WriteString(out, content)
		return err
	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, cmd)
	}
}

func upload(ctx context.Context, client Client, path string, out io.Writer) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read file: %w", err)
	}

	file, err := client.Upload(ctx, filepath.Base(path), content)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintf(out, "uploaded %s (%d bytes)\n", file.Name, file.Size)
	return err
}

func list(ctx context.Context, client Client, out io.Writer) error {
	files, err := client.List(ctx)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "NAME\tSIZE\tCREATED\tMODIFIED")
	for _, f := range files {
		_, _ = fmt.Fprintf(tw, "%s\t%d\t%s\t%s\n",
			f.Name, f.Size, f.CreatedAt.Format(time.RFC3339), f.ModifiedAt.Format(time.RFC3339))
	}
	return tw.Flush()
}

func serverAddrDefault() string {
	if addr := os.Getenv(envServerAddr); addr != "" {
		return addr
	}
	return "http://localhost:8001"
}
