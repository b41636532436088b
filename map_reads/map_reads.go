// Maintain a leveldb database mapping read ids to the sample they
// were sequenced from, and summarize id lists against it.  This
// removes any existing database and starts from an empty database.
//
// Run the program using either "build" or "summarize" as the second
// argument.

package main

import (
	"bufio"
	"fmt"
	"log"
	"os"
	"sort"

	"github.com/syndtr/goleveldb/leveldb"

	"github.com/kerrimalone/head-to-head-pipeline/utils"
)

var (
	config *utils.Config

	logger *log.Logger
)

func build() {

	err := os.RemoveAll(config.SampleDbPath)
	if err != nil {
		panic(err)
	}
	db, err := leveldb.OpenFile(config.SampleDbPath, nil)
	if err != nil {
		panic(err)
	}
	defer db.Close()

	samples := make([]string, 0, len(config.SampleIdFiles))
	for sample := range config.SampleIdFiles {
		samples = append(samples, sample)
	}
	sort.Strings(samples)

	var total int
	for _, sample := range samples {

		ids, err := utils.ReadIds(config.SampleIdFiles[sample])
		if err != nil {
			logger.Print(err)
			panic(err)
		}

		for _, id := range ids {
			prev, err := db.Get([]byte(id), nil)
			if err == nil && string(prev) != sample {
				err = fmt.Errorf("read %s claimed by both %s and %s", id, prev, sample)
				logger.Print(err)
				panic(err)
			}
			if err != nil && err != leveldb.ErrNotFound {
				logger.Print(err)
				panic(err)
			}

			err = db.Put([]byte(id), []byte(sample), nil)
			if err != nil {
				logger.Print(err)
				panic(err)
			}
		}

		logger.Printf("%s: %d ids", sample, len(ids))
		total += len(ids)
	}

	logger.Printf("Stored %d ids from %d samples", total, len(samples))
}

func summarize() {

	db, err := leveldb.OpenFile(config.SampleDbPath, nil)
	if err != nil {
		panic(err)
	}
	defer db.Close()

	ids, err := utils.ReadIds(config.ReadIdFileName)
	if err != nil {
		logger.Print(err)
		panic(err)
	}

	counts := tally(ids, func(id string) (string, bool) {
		v, err := db.Get([]byte(id), nil)
		if err == leveldb.ErrNotFound {
			return "", false
		}
		if err != nil {
			logger.Print(err)
			panic(err)
		}
		return string(v), true
	})

	out, err := os.Create(config.SummaryFileName)
	if err != nil {
		logger.Print(err)
		panic(err)
	}
	defer out.Close()
	w := bufio.NewWriter(out)
	defer w.Flush()

	samples := make([]string, 0, len(counts))
	for sample := range counts {
		samples = append(samples, sample)
	}
	sort.Strings(samples)

	for _, sample := range samples {
		fmt.Fprintf(w, "%s\t%d\n", sample, counts[sample])
	}

	logger.Printf("Summarized %d ids into %s", len(ids), config.SummaryFileName)
}

// tally counts ids per sample, with unresolvable ids counted under
// "unmapped".
func tally(ids []string, lookup func(string) (string, bool)) map[string]int {
	counts := make(map[string]int)
	for _, id := range ids {
		sample, ok := lookup(id)
		if !ok {
			sample = "unmapped"
		}
		counts[sample]++
	}
	return counts
}

func main() {
	if len(os.Args) != 3 {
		panic("map_reads: wrong number of arguments")
	}

	config = utils.ReadConfig(os.Args[1])
	logger = utils.NewLogger(config, "map_reads")

	switch os.Args[2] {
	case "build":
		build()
	case "summarize":
		summarize()
	default:
		panic(fmt.Sprintf("map_reads: invalid mode: %v", os.Args[2]))
	}
	logger.Print("Done")
}
