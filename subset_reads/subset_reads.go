// Subset a file of sequencing reads by id.  Reads whose id is in
// the keep set (or not in it, with InvertMatch) are written to the
// output in the input's record format.  With DedupReads, reads
// whose sequence has already been seen are dropped, keyed by a
// 64-bit xxhash digest of the sequence.

package main

import (
	"bufio"
	"log"
	"os"

	"github.com/OneOfOne/xxhash"

	"github.com/kerrimalone/head-to-head-pipeline/idset"
	"github.com/kerrimalone/head-to-head-pipeline/utils"
)

var (
	config *utils.Config

	logger *log.Logger
)

func loadKeepSet() *idset.Set {

	ids, err := utils.ReadIds(config.KeepIdFileName)
	if err != nil {
		logger.Print(err)
		panic(err)
	}

	var set *idset.Set
	if config.BloomSize > 0 {
		set = idset.NewBloom(config.BloomSize, config.NumHash)
	} else {
		set = idset.New()
	}

	for _, id := range ids {
		if err := set.Add(id); err != nil {
			logger.Print(err)
			panic(err)
		}
	}

	logger.Printf("Loaded %d distinct ids", set.Len())
	return set
}

func subset(set *idset.Set) {

	ris, err := utils.NewReadInSeq(config.ReadFileName)
	if err != nil {
		logger.Print(err)
		panic(err)
	}
	defer ris.Close()

	out, closer, err := utils.OpenWrite(config.OutFileName)
	if err != nil {
		logger.Print(err)
		panic(err)
	}

	w := bufio.NewWriter(out)

	var seen map[uint64]bool
	if config.DedupReads {
		seen = make(map[uint64]bool)
	}

	var total, kept, dups int
	for total = 0; ris.Next(); total++ {

		if total%100000 == 0 && total > 0 {
			logger.Printf("reads: %d", total)
		}

		f, err := set.Contains(ris.Name)
		if err != nil {
			logger.Print(err)
			panic(err)
		}
		if f == config.InvertMatch {
			continue
		}

		if seen != nil {
			h := xxhash.ChecksumString64(ris.Seq)
			if seen[h] {
				dups++
				continue
			}
			seen[h] = true
		}

		if err := ris.WriteRecord(w); err != nil {
			logger.Print(err)
			panic(err)
		}
		kept++
	}
	if err := ris.Err(); err != nil {
		logger.Print(err)
		panic(err)
	}

	if err := w.Flush(); err != nil {
		logger.Print(err)
		panic(err)
	}
	if err := closer(); err != nil {
		logger.Print(err)
		panic(err)
	}

	if config.DedupReads {
		logger.Printf("Kept %d of %d reads (%d duplicate sequences dropped)", kept, total, dups)
	} else {
		logger.Printf("Kept %d of %d reads", kept, total)
	}
}

func main() {
	if len(os.Args) != 2 {
		panic("subset_reads: wrong number of arguments")
	}

	config = utils.ReadConfig(os.Args[1])
	logger = utils.NewLogger(config, "subset_reads")

	set := loadKeepSet()
	subset(set)
	logger.Print("Done")
}
