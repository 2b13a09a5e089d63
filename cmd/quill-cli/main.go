// Command quill-cli pipes stdin (or a file) through quill.Check and
// prints the result.
//
// Usage:
//
//	echo "I has a apple" | quill-cli
//	quill-cli -f draft.txt -report
//	quill-cli -f draft.txt -fix > corrected.txt
//	quill-cli -mode local -dict-file /usr/share/dict/words
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fatih/color"

	"github.com/quillgo/quill/internal/model"
	"github.com/quillgo/quill/internal/oracle/gemini"
	"github.com/quillgo/quill/internal/oracle/langtool"
	"github.com/quillgo/quill/internal/oracle/local"
	"github.com/quillgo/quill/internal/oracle/openai"
	"github.com/quillgo/quill/internal/util"
	"github.com/quillgo/quill/quill"
)

func main() {
	file := flag.String("f", "", "file to read instead of stdin")
	dict := flag.String("d", "", "user dictionary JSON file (optional)")
	timeout := flag.Duration("t", 30*time.Second, "overall timeout")
	mode := flag.String("mode", "languagetool", "backend: languagetool | openai | gemini | local")
	ltURL := flag.String("lt-url", envOr("LANGTOOL_URL", "https://api.languagetool.org"), "LanguageTool base URL")
	ltLang := flag.String("lt-lang", envOr("LANGTOOL_LANG", "en-US"), "LanguageTool language code")
	dictFile := flag.String("dict-file", "", "word list for local mode (one word per line)")
	fix := flag.Bool("fix", false, "print only the corrected text")
	report := flag.Bool("report", false, "print a human-readable span report instead of JSON")
	flag.Parse()

	var r io.Reader = os.Stdin
	if *file != "" {
		f, err := os.Open(*file)
		must(err)
		defer f.Close()
		r = f
	}

	data, err := io.ReadAll(r)
	must(err)
	text := string(data)

	var checker quill.Checker
	switch *mode {
	case "openai":
		checker = openai.New(os.Getenv("OPENAI_API_KEY"), envOr("OPENAI_MODEL", ""), envOr("OPENAI_BASE_URL", ""))
	case "gemini":
		checker = gemini.New(os.Getenv("GEMINI_API_KEY"), envOr("GEMINI_MODEL", ""))
	case "local":
		c, cerr := local.New(*dictFile)
		must(cerr)
		checker = c
	default:
		checker = langtool.New(*ltURL, *ltLang)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	var d *quill.Dict
	if *dict != "" {
		d, err = quill.LoadDict(*dict)
		must(err)
		if pw, ok := checker.(quill.ProtectedWordChecker); ok {
			checker = pw.WithProtected(d.Words)
		}
	}

	var res *model.Result
	if d != nil {
		res, err = quill.CheckWithDict(ctx, text, checker, d)
	} else {
		res, err = quill.Check(ctx, text, checker)
	}
	must(err)

	switch {
	case *fix:
		fmt.Println(res.Corrected)
	case *report:
		printReport(res)
	default:
		out, _ := util.MarshalNoEscape(res, true)
		fmt.Println(string(out))
	}
}

func printReport(res *model.Result) {
	if res.ErrorCount == 0 {
		fmt.Println(color.GreenString("✓ no issues found"))
		return
	}

	fmt.Printf("%d issue(s):\n\n", res.ErrorCount)
	for _, s := range res.Spans {
		fmt.Printf("  [%d:%d] %s  %s → %s\n", s.Start, s.End,
			color.YellowString("%-11s", string(s.Kind)),
			color.RedString("%q", s.Original),
			color.GreenString("%q", s.Suggestion))
		if s.Message != "" {
			fmt.Printf("          %s\n", s.Message)
		}
	}
	fmt.Printf("\ncorrected:\n%s\n", res.Corrected)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func must(err error) {
	if err != nil {
		fmt.Fprintln(os.Stderr, "quill-cli:", err)
		os.Exit(1)
	}
}
