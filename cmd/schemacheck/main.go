package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/siegeai/jsonschema/jsonschema"
	"github.com/valyala/fastjson"
)

func main() {
	schemaPath := flag.String("schema", "", "path to the schema document")
	base := flag.String("base", "", "resolution base URI for the schema")
	level := flag.String("log", "info", "log level")
	flag.Parse()

	if err := setupLogging(*level); err != nil {
		slog.Error("could not init logging", "err", err)
		os.Exit(2)
	}
	if *schemaPath == "" || flag.NArg() == 0 {
		slog.Error("usage: schemacheck -schema schema.json instance.json...")
		os.Exit(2)
	}

	sb, err := os.ReadFile(*schemaPath)
	if err != nil {
		slog.Error("could not read schema", "err", err)
		os.Exit(2)
	}
	doc, err := jsonschema.ParseBytes(sb, *base)
	if err != nil {
		slog.Error("could not parse schema", "err", err)
		os.Exit(2)
	}
	reg := jsonschema.NewRegistry()
	if err := reg.Register(doc); err != nil {
		slog.Error("could not register schema", "err", err)
		os.Exit(2)
	}

	failed := false
	for _, path := range flag.Args() {
		ib, err := os.ReadFile(path)
		if err != nil {
			slog.Error("could not read instance", "path", path, "err", err)
			failed = true
			continue
		}
		inst, err := fastjson.ParseBytes(ib)
		if err != nil {
			slog.Error("instance is not valid JSON", "path", path, "err", err)
			failed = true
			continue
		}
		violations := doc.Validate(inst, reg)
		if len(violations) == 0 {
			fmt.Printf("%s: ok\n", path)
			continue
		}
		failed = true
		for _, v := range violations {
			fmt.Printf("%s%s\n", path, v)
		}
	}
	if failed {
		os.Exit(1)
	}
}

func setupLogging(level string) error {
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return err
	}
	h := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: l})
	slog.SetDefault(slog.New(h))
	return nil
}
