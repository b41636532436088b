// Split a file of read ids into a training set and an evaluation
// set.  The draw is seeded, so the same config always produces the
// same split.  Either both output files are written or neither is.

package main

import (
	"log"
	"os"

	"github.com/kerrimalone/head-to-head-pipeline/idsplit"
	"github.com/kerrimalone/head-to-head-pipeline/utils"
)

var (
	config *utils.Config

	logger *log.Logger
)

func split() {

	ids, err := utils.ReadIds(config.ReadIdFileName)
	if err != nil {
		logger.Print(err)
		panic(err)
	}

	if config.DedupIds {
		n := len(ids)
		ids = idsplit.Dedup(ids)
		if len(ids) < n {
			logger.Printf("Collapsed %d duplicate ids", n-len(ids))
		}
	}

	train, eval, err := idsplit.Split(ids, config.TrainFrac, config.Seed)
	if err != nil {
		logger.Print(err)
		panic(err)
	}

	if err := utils.WriteIds(config.TrainFileName, train); err != nil {
		logger.Print(err)
		panic(err)
	}
	if err := utils.WriteIds(config.EvalFileName, eval); err != nil {
		// Do not leave a lone training file behind.
		os.Remove(config.TrainFileName)
		logger.Print(err)
		panic(err)
	}

	logger.Printf("Using %d reads for training, leaving %d for evaluation.",
		len(train), len(eval))
}

func main() {
	if len(os.Args) != 2 {
		panic("split_reads: wrong number of arguments")
	}

	config = utils.ReadConfig(os.Args[1])
	logger = utils.NewLogger(config, "split_reads")

	split()
	logger.Print("Done")
}
