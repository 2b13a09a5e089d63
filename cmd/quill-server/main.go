// Command quill-server provides an HTTP REST API for grammar checking.
//
// Usage:
//
//	quill-server -p 8080 -mode languagetool
//	quill-server -p 8080 -mode local -dict-file /usr/share/dict/words
//	quill-server -p 8080 -mode openai        # needs OPENAI_API_KEY
//	quill-server -p 8080 -mode gemini        # needs GEMINI_API_KEY
//
// Settings come from an optional TOML file (-config), overridden by
// environment variables, overridden by flags.
package main

import (
	"flag"
	"log"
	"net/http"

	"github.com/quillgo/quill/internal/cache"
	"github.com/quillgo/quill/internal/config"
	"github.com/quillgo/quill/internal/oracle/gemini"
	"github.com/quillgo/quill/internal/oracle/langtool"
	"github.com/quillgo/quill/internal/oracle/local"
	"github.com/quillgo/quill/internal/oracle/openai"
	"github.com/quillgo/quill/quill"
)

func main() {
	configPath := flag.String("config", "quill.toml", "TOML config file (missing file is fine)")
	port := flag.String("p", "", "port to listen on (overrides config addr)")
	mode := flag.String("mode", "", "backend: languagetool | openai | gemini | local")
	dictFile := flag.String("dict-file", "", "word list for local mode (one word per line)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if *port != "" {
		cfg.Addr = ":" + *port
	}
	if *mode != "" {
		cfg.Mode = *mode
	}
	if *dictFile != "" {
		cfg.DictFile = *dictFile
	}

	switch cfg.Mode {
	case "openai":
		if cfg.OpenAIKey == "" {
			log.Fatal("openai mode requires OPENAI_API_KEY")
		}
		quill.DefaultChecker = openai.New(cfg.OpenAIKey, cfg.OpenAIModel, cfg.OpenAIURL)
		log.Printf("   backend : openai (model=%s)\n", orDefault(cfg.OpenAIModel, openai.DefaultModel))

	case "gemini":
		if cfg.GeminiKey == "" {
			log.Fatal("gemini mode requires GEMINI_API_KEY")
		}
		quill.DefaultChecker = gemini.New(cfg.GeminiKey, cfg.GeminiModel)
		log.Printf("   backend : gemini (model=%s)\n", orDefault(cfg.GeminiModel, gemini.DefaultModel))

	case "local":
		c, err := local.New(cfg.DictFile)
		if err != nil {
			log.Fatalf("local checker init failed: %v", err)
		}
		quill.DefaultChecker = c
		log.Printf("   backend : local (dict=%s)\n", cfg.DictFile)

	default:
		cfg.Mode = "languagetool"
		quill.DefaultChecker = langtool.New(cfg.LangToolURL, cfg.LangToolLang)
		log.Printf("   backend : languagetool (%s, lang=%s)\n", cfg.LangToolURL, cfg.LangToolLang)
	}
	quill.Mode = cfg.Mode

	if cfg.RedisURL != "" {
		rc, err := cache.New(cfg.RedisURL, cfg.CacheTTL)
		if err != nil {
			log.Fatalf("result cache init failed: %v", err)
		}
		defer rc.Close()
		quill.ResultCache = rc
		log.Printf("   cache   : redis (%s)\n", cfg.RedisURL)
	}

	http.HandleFunc("/v1/check", quill.CheckHandler)
	http.HandleFunc("/v1/preview-fix", quill.PreviewFixHandler)
	http.HandleFunc("/health", quill.HealthHandler)
	http.HandleFunc("/openapi.json", quill.OpenAPIHandler)
	http.HandleFunc("/", quill.DocsHandler)

	log.Printf("🚀 quill server listening on http://localhost%s\n", cfg.Addr)
	log.Printf("   POST http://localhost%s/v1/check\n", cfg.Addr)
	log.Printf("   POST http://localhost%s/v1/preview-fix\n", cfg.Addr)
	log.Printf("   GET  http://localhost%s/health\n", cfg.Addr)
	log.Printf("   GET  http://localhost%s/       (Redoc UI)\n", cfg.Addr)
	log.Fatal(http.ListenAndServe(cfg.Addr, nil))
}

func orDefault(v, fallback string) string {
	if v != "" {
		return v
	}
	return fallback
}
