package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vango-dev/vbind"
	"github.com/vango-dev/vbind/internal/config"
	"github.com/vango-dev/vbind/internal/errors"
	"github.com/vango-dev/vbind/pkg/dom"
)

type renderOptions struct {
	template string
	data     string
	root     string
	sets     []string
	inputs   []string
	events   []string
}

func renderCmd(configPath *string) *cobra.Command {
	var opts renderOptions

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Compile a template and print the result",
		Long: `Compile a template against a data file and print the document.

Model writes (--set), user edits (--input) and events (--event) are
applied in that order after compilation, so the output shows the DOM
after the bindings reacted to them.

Examples:
  vbind render --template index.html --data data.json
  vbind render -t index.html --set name=Bo --set count=3
  vbind render -t index.html --input '#name=Cy' --event '#inc=click'`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			return runRender(cmd, cfg, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.template, "template", "t", "", "Template file (default from config)")
	cmd.Flags().StringVarP(&opts.data, "data", "d", "", "JSON or YAML data file (default from config)")
	cmd.Flags().StringVarP(&opts.root, "root", "r", "", "Root element selector (default from config, #app)")
	cmd.Flags().StringArrayVar(&opts.sets, "set", nil, "Model write key=value or key+=number (repeatable)")
	cmd.Flags().StringArrayVar(&opts.inputs, "input", nil, "User edit target=value, target a selector or data-vb-id (repeatable)")
	cmd.Flags().StringArrayVar(&opts.events, "event", nil, "Event target=type, e.g. '#inc=click' (repeatable)")

	return cmd
}

func runRender(cmd *cobra.Command, cfg *config.Config, opts renderOptions) error {
	templatePath := cfg.TemplatePath()
	if opts.template != "" {
		templatePath = opts.template
	}
	if templatePath == "" {
		return errors.New("E050").
			WithDetail("no template given").
			WithSuggestion("Pass --template or set \"template\" in vbind.json")
	}
	dataPath := cfg.DataPath()
	if opts.data != "" {
		dataPath = opts.data
	}
	root := cfg.Root
	if opts.root != "" {
		root = opts.root
	}

	// Parse every flag before touching the model.
	sets := make([]config.Assignment, 0, len(opts.sets))
	for _, s := range opts.sets {
		a, err := config.ParseAssignment(s)
		if err != nil {
			return errors.New("E050").WithDetail("--set " + s).Wrap(err)
		}
		sets = append(sets, a)
	}
	inputs, err := parseTargets("--input", opts.inputs)
	if err != nil {
		return err
	}
	events, err := parseTargets("--event", opts.events)
	if err != nil {
		return err
	}

	f, err := os.Open(templatePath)
	if err != nil {
		return errors.New("E020").WithFile(templatePath).Wrap(err)
	}
	doc, err := dom.Parse(f)
	f.Close()
	if err != nil {
		return errors.FromError(err, "E020").WithFile(templatePath)
	}

	data, err := config.LoadData(dataPath)
	if err != nil {
		return err
	}

	logger := newLogger(cfg, cmd.ErrOrStderr())
	methods, err := actionMethods(cfg, logger)
	if err != nil {
		return err
	}

	var runtimeErrs []error
	vm, err := vbind.New(vbind.Options{
		El:             root,
		Document:       doc,
		Data:           data,
		Methods:        methods,
		Logger:         logger,
		MaxNotifyDepth: cfg.Reactive.MaxNotifyDepth,
		OnError:        func(err error) { runtimeErrs = append(runtimeErrs, err) },
	})
	if err != nil {
		return err
	}
	doc.MarkReady()

	for _, a := range sets {
		if _, err := a.Apply(vm); err != nil {
			return errors.New("E050").WithDetail("--set " + a.String()).Wrap(err)
		}
	}
	for _, in := range inputs {
		node, err := in.resolve(doc)
		if err != nil {
			return err
		}
		doc.Input(node, in.value)
	}
	for _, ev := range events {
		node, err := ev.resolve(doc)
		if err != nil {
			return err
		}
		if doc.Dispatch(node, ev.value) == 0 {
			logger.Warn("no listener", "target", ev.target, "event", ev.value)
		}
	}

	for _, e := range runtimeErrs {
		errors.PrintError(cmd.ErrOrStderr(), e)
	}

	out := cmd.OutOrStdout()
	if err := doc.Render(out); err != nil {
		return err
	}
	fmt.Fprintln(out)
	return nil
}

// target is a "selector=value" flag.
type target struct {
	flag   string
	target string
	value  string
}

func parseTargets(flag string, values []string) ([]target, error) {
	out := make([]target, 0, len(values))
	for _, v := range values {
		sel, value, ok := strings.Cut(v, "=")
		sel = strings.TrimSpace(sel)
		if !ok || sel == "" {
			return nil, errors.New("E050").
				WithDetail(flag + " " + v + ": want target=value").
				WithSuggestion("Use a selector or data-vb-id before '=', e.g. " + flag + " '#name=Cy'")
		}
		out = append(out, target{flag: flag, target: sel, value: value})
	}
	return out, nil
}

// resolve finds the target node, by data-vb-id first, then by selector.
func (t target) resolve(doc *dom.Document) (dom.Node, error) {
	if n, ok := doc.NodeByID(t.target); ok {
		return n, nil
	}
	n, err := doc.Query(t.target)
	if err != nil {
		return nil, errors.New("E050").WithDetail(t.flag + " " + t.target).Wrap(err)
	}
	if n == nil {
		return nil, errors.New("E050").WithDetail(t.flag + ": no element matches " + t.target)
	}
	return n, nil
}
