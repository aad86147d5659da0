// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Command bascet is a thin demonstration CLI wiring the read and write
// pipelines end to end over the tirp grammar and the bgzf codec: write
// ingests a plain tirp-formatted file and emits a bgzf-compressed
// stream; read decodes a bgzf stream back into per-record or per-cell
// output.
//
// Grounded on SimonWaldherr-tinySQL/cmd/tinysql's flag-driven
// subcommand dispatch style; kept intentionally thin, since CLI
// ergonomics are explicitly out of scope for the core pipeline.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"code.hybscloud.com/bascet/arena"
	"code.hybscloud.com/bascet/bgzf"
	"code.hybscloud.com/bascet/parser"
	"code.hybscloud.com/bascet/query"
	"code.hybscloud.com/bascet/record"
	"code.hybscloud.com/bascet/ring"
	"code.hybscloud.com/bascet/stream"
	"code.hybscloud.com/bascet/tirp"
	"code.hybscloud.com/bascet/writer"
)

const (
	// blockSize must not exceed bgzf.MaxISIZE: runWrite accumulates
	// pending bytes up to this size before submitting a block, and a
	// block over MaxISIZE is rejected by Codec.Compress.
	blockSize     = bgzf.MaxISIZE
	ringCapacity  = 8
	scratchPages  = 4
	writeWorkers  = 4
	writeQueueCap = 16
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "write":
		err = runWrite(os.Args[2:])
	case "read":
		err = runRead(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		slog.Error("bascet", "error", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: bascet write -in FILE -out FILE")
	fmt.Fprintln(os.Stderr, "       bascet read -in FILE [-mode record|cell]")
}

func runWrite(args []string) error {
	fs := flag.NewFlagSet("write", flag.ExitOnError)
	in := fs.String("in", "", "path to a plain tirp-formatted input file")
	out := fs.String("out", "", "path to write the bgzf-compressed output")
	level := fs.Int("level", 6, "flate compression level")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *in == "" || *out == "" {
		usage()
		return fmt.Errorf("bascet write: -in and -out are required")
	}

	inFile, err := os.Open(*in)
	if err != nil {
		return err
	}
	defer inFile.Close()

	outFile, err := os.Create(*out)
	if err != nil {
		return err
	}
	defer outFile.Close()

	codec := bgzf.NewCodec(*level, []byte("tirp"))
	w := writer.New(bufio.NewWriter(outFile), codec, scratchPages, codec.CompressBound(blockSize), writeWorkers, writeQueueCap)

	sourcePool := arena.New(writeWorkers*2, blockSize)
	scan := bufio.NewScanner(inFile)
	scan.Buffer(make([]byte, 0, blockSize), blockSize)

	var pending []byte
	flush := func() error {
		if len(pending) == 0 {
			return nil
		}
		v, err := sourcePool.Alloc(len(pending))
		if err != nil {
			return err
		}
		copy(v.Bytes(), pending)
		pending = pending[:0]
		return w.Submit(v)
	}

	for scan.Scan() {
		line := scan.Bytes()
		if len(pending)+len(line)+1 > blockSize {
			if err := flush(); err != nil {
				return err
			}
		}
		pending = append(pending, line...)
		pending = append(pending, '\n')
	}
	if err := scan.Err(); err != nil {
		return err
	}
	if err := flush(); err != nil {
		return err
	}

	return w.Close()
}

func runRead(args []string) error {
	fs := flag.NewFlagSet("read", flag.ExitOnError)
	in := fs.String("in", "", "path to a bgzf-compressed input file")
	mode := fs.String("mode", "record", "output mode: record or cell")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *in == "" {
		usage()
		return fmt.Errorf("bascet read: -in is required")
	}

	inFile, err := os.Open(*in)
	if err != nil {
		return err
	}
	defer inFile.Close()

	decoder := bgzf.NewDecoder(bufio.NewReader(inFile))
	decodePool := arena.New(ringCapacity, decoder.SizeofTargetAlloc())
	scratchPool := arena.New(scratchPages, blockSize)
	r := ring.New[arena.View](ringCapacity)

	dw := stream.NewDecodeWorker(decoder, decodePool, r)
	go dw.Run()

	p := tirp.New(parser.DefaultColumnMap())
	out := bufio.NewWriter(os.Stdout)
	defer out.Flush()

	switch *mode {
	case "record":
		return readAsRecord(r, p, scratchPool, out)
	case "cell":
		return readAsCell(r, p, scratchPool, out)
	default:
		return fmt.Errorf("bascet read: unknown -mode %q", *mode)
	}
}

func readAsRecord(r *ring.SPSC[arena.View], p parser.Parser, scratchPool *arena.Pool, out *bufio.Writer) error {
	consumer := stream.NewRecordConsumer(r, p, scratchPool, nil)
	for {
		rec, err := consumer.Next()
		if err != nil {
			return err
		}
		if rec == nil {
			return nil
		}
		fmt.Fprintf(out, "%s\t%s\t%s\n", record.Get[record.ID](rec), record.Get[record.Read1](rec), record.Get[record.Read2](rec))
		rec.Release()
	}
}

func readAsCell(r *ring.SPSC[arena.View], p parser.Parser, scratchPool *arena.Pool, out *bufio.Writer) error {
	groupByID := query.PredicateFunc[stream.CellContext](func(ctx stream.CellContext) query.Result {
		if ctx.Aggregate.Len() == 0 {
			return query.Keep
		}
		if string(record.Get[record.ID](ctx.Record)) != string(ctx.Aggregate.ID()) {
			return query.Emit
		}
		return query.Keep
	})
	consumer := stream.NewCellConsumer(r, p, scratchPool, []query.Predicate[stream.CellContext]{groupByID})
	for {
		agg, err := consumer.Next()
		if err != nil {
			return err
		}
		if agg == nil {
			return nil
		}
		fmt.Fprintf(out, "%s\t%d reads\n", agg.ID(), agg.Len())
		agg.Release()
	}
}
