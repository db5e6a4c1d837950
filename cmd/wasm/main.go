//go:build js && wasm

package main

import (
	"context"
	"encoding/json"
	"syscall/js"

	"essaysim/internal/adapter/analyzer"
	"essaysim/internal/adapter/cache"
	"essaysim/internal/adapter/memstore"
	"essaysim/internal/textstats"
	"essaysim/internal/usecase"
)

var (
	registry *analyzer.Registry
	history  *memstore.MemoryStore
	grader   *usecase.GradeUseCase
)

func init() {
	var err error
	registry, err = analyzer.DefaultRegistry()
	if err != nil {
		panic(err)
	}
	history = memstore.NewMemoryStore()
	grader, err = usecase.NewGradeUseCase(registry,
		usecase.Thresholds{Upper: 0.8, Lower: 0.5},
		usecase.WithScoreCache(cache.NewScoreCache(256, 0)),
		usecase.WithAttemptStore(history),
	)
	if err != nil {
		panic(err)
	}
}

func main() {
	c := make(chan struct{})

	js.Global().Set("essaysimGrade", js.FuncOf(grade))
	js.Global().Set("essaysimStats", js.FuncOf(stats))
	js.Global().Set("essaysimLanguages", js.FuncOf(languages))
	js.Global().Set("essaysimHistory", js.FuncOf(listHistory))
	js.Global().Set("essaysimClear", js.FuncOf(clearHistory))

	<-c
}

// grade takes a JSON encoded grade request and returns the JSON result.
func grade(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return makeError("usage: essaysimGrade(requestJSON)")
	}

	var req struct {
		Language   string              `json:"language"`
		Reference  string              `json:"reference"`
		Responses  []string            `json:"responses"`
		Thresholds *usecase.Thresholds `json:"thresholds"`
		Stats      string              `json:"stats"`
		Joint      bool                `json:"joint"`
		Record     bool                `json:"record"`
	}
	if err := json.Unmarshal([]byte(args[0].String()), &req); err != nil {
		return makeError("invalid request: " + err.Error())
	}

	items, err := textstats.ParseItems(req.Stats)
	if err != nil {
		return makeError(err.Error())
	}
	responses := make([]usecase.Response, len(req.Responses))
	for i, text := range req.Responses {
		responses[i] = usecase.Response{Text: text}
	}

	res, err := grader.Grade(context.Background(), usecase.GradeRequest{
		Language:   req.Language,
		Reference:  req.Reference,
		Responses:  responses,
		Thresholds: req.Thresholds,
		StatItems:  items,
		Joint:      req.Joint,
		Record:     req.Record,
	})
	if err != nil {
		return makeError(err.Error())
	}
	return makeResult(res)
}

func stats(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return makeError("usage: essaysimStats(text, [items])")
	}
	items := textstats.AllItems
	if len(args) > 1 {
		parsed, err := textstats.ParseItems(args[1].String())
		if err != nil {
			return makeError(err.Error())
		}
		if len(parsed) > 0 {
			items = parsed
		}
	}
	return makeResult(textstats.Compute(args[0].String(), items))
}

func languages(this js.Value, args []js.Value) interface{} {
	out := make([]map[string]string, 0)
	for _, code := range registry.Codes() {
		out = append(out, map[string]string{"code": code, "name": registry.Name(code)})
	}
	return makeResult(out)
}

func listHistory(this js.Value, args []js.Value) interface{} {
	limit := 0
	if len(args) > 0 {
		limit = args[0].Int()
	}
	attempts, _ := history.ListAttempts(limit)
	sum, _ := history.Summary()
	return makeResult(map[string]interface{}{
		"items":   attempts,
		"summary": sum,
	})
}

func clearHistory(this js.Value, args []js.Value) interface{} {
	history.Clear()
	return makeResult(map[string]interface{}{
		"success": true,
	})
}

func makeError(msg string) interface{} {
	result, _ := json.Marshal(map[string]interface{}{
		"error": msg,
	})
	return string(result)
}

func makeResult(data interface{}) interface{} {
	result, _ := json.Marshal(data)
	return string(result)
}
