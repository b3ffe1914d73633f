package client

import (
	"bytes"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"

	"github.com/chatglot/chatglot"
)

// sseDecoder incrementally decodes newline-delimited "data: <json>" records
// from a chunked stream body. Chunk boundaries are arbitrary: a trailing
// unterminated fragment stays pending and is prepended to the next chunk, so
// feeding a stream one byte at a time decodes the same records as feeding it
// whole.
type sseDecoder struct {
	pending []byte
	log     *logrus.Entry
}

func newSSEDecoder(log *logrus.Entry) *sseDecoder {
	return &sseDecoder{log: log}
}

// feed appends a chunk and returns every update completed by it, in order.
func (d *sseDecoder) feed(chunk []byte) []chatglot.ProgressiveUpdate {
	d.pending = append(d.pending, chunk...)

	var updates []chatglot.ProgressiveUpdate
	for {
		i := bytes.IndexByte(d.pending, '\n')
		if i < 0 {
			break
		}
		line := string(d.pending[:i])
		d.pending = d.pending[i+1:]

		if u, ok := d.parseLine(line); ok {
			updates = append(updates, u)
		}
	}
	return updates
}

// flush decodes whatever is still pending. Called at end of stream, where a
// final record may lack its terminating newline.
func (d *sseDecoder) flush() []chatglot.ProgressiveUpdate {
	if len(d.pending) == 0 {
		return nil
	}
	line := string(d.pending)
	d.pending = nil

	if u, ok := d.parseLine(line); ok {
		return []chatglot.ProgressiveUpdate{u}
	}
	return nil
}

// parseLine decodes one "data: <json>" line. Non-data lines (comments,
// event names, keep-alive blanks) are ignored. A malformed JSON payload is
// logged and skipped; it never aborts the stream.
func (d *sseDecoder) parseLine(line string) (chatglot.ProgressiveUpdate, bool) {
	line = strings.TrimRight(line, "\r")
	trimmed := strings.TrimSpace(line)
	if trimmed == "" || !strings.HasPrefix(trimmed, "data:") {
		return chatglot.ProgressiveUpdate{}, false
	}

	payload := strings.TrimSpace(strings.TrimPrefix(trimmed, "data:"))
	if payload == "" {
		return chatglot.ProgressiveUpdate{}, false
	}

	if !gjson.Valid(payload) {
		perr := &chatglot.ParseError{Message: "malformed stream record", Input: payload}
		if d.log != nil {
			d.log.WithError(perr).Warn("skipping malformed progressive record")
		}
		return chatglot.ProgressiveUpdate{}, false
	}

	g := gjson.Parse(payload)
	update := chatglot.ProgressiveUpdate{
		Stage:               g.Get("stage").String(),
		Progress:            g.Get("progress").Float(),
		PartialTranslation:  firstString(g, "partial_translation", "translation", "partial"),
		QualityGrade:        g.Get("quality_grade").String(),
		StatusMessage:       firstString(g, "status_message", "message"),
		OptimizationApplied: g.Get("optimization_applied").Bool(),
		CacheHit:            g.Get("cache_hit").Bool(),
		ProcessingTimeMs:    firstFloat(g, "processing_time", "processing_time_ms"),
	}

	if score := g.Get("quality_score"); score.Exists() {
		v := score.Float()
		update.QualityScore = &v
		if update.QualityGrade == "" {
			update.QualityGrade = chatglot.GradeForScore(v)
		}
	}

	return update, true
}
