// Declare the read-preparation part of the pipeline as a scipipe
// workflow: basecall the raw signal, extract the read ids, split
// them into training and evaluation sets, and subset the reads for
// each.  Scheduling, retries and caching belong to scipipe; the
// step programs in this repository and the external tools (guppy,
// taiyaki) do the work.
//
// The step programs are driven by their own JSON config files and
// write wherever the config says.  Scipipe only accepts a task whose
// command creates the declared output paths, so each step command
// copies the config-declared artifact into its output port; the
// artifact path flags below must match the JSON configs.

package main

import (
	"flag"

	sp "github.com/scipipe/scipipe"
)

var (
	fast5Dir = flag.String("fast5Dir", "data/fast5",
		"directory containing the raw fast5 signal files")

	outDir = flag.String("outDir", "basecalled",
		"directory for basecalling output")

	guppyConfig = flag.String("guppyConfig", "dna_r9.4.1_450bps_hac.cfg",
		"guppy basecalling model configuration")

	splitConfig = flag.String("splitConfig", "config/split_reads.json",
		"config file for the id split step")

	trainSubsetConfig = flag.String("trainSubsetConfig", "config/subset_train.json",
		"config file for subsetting the training reads")

	evalSubsetConfig = flag.String("evalSubsetConfig", "config/subset_eval.json",
		"config file for subsetting the evaluation reads")

	trainIdsPath = flag.String("trainIdsPath", "tmp/train_ids.txt",
		"TrainFileName declared in the split config")

	evalIdsPath = flag.String("evalIdsPath", "tmp/eval_ids.txt",
		"EvalFileName declared in the split config")

	trainFastqPath = flag.String("trainFastqPath", "tmp/train.fastq",
		"OutFileName declared in the training subset config")

	evalFastqPath = flag.String("evalFastqPath", "tmp/eval.fastq",
		"OutFileName declared in the evaluation subset config")

	maxTasks = flag.Int("maxTasks", 4,
		"maximum number of concurrently running tasks")
)

func main() {
	flag.Parse()

	wf := sp.NewWorkflow("read_prep", *maxTasks)

	basecall := wf.NewProc("basecall",
		"guppy_basecaller -i "+*fast5Dir+" -s {o:outdir} -c "+*guppyConfig+
			" && cat {o:outdir}/pass/*.fastq > {o:reads}")
	basecall.SetOut("outdir", *outDir)
	basecall.SetOut("reads", *outDir+"/reads.fastq")

	extractIds := wf.NewProc("extract_ids",
		"awk 'NR % 4 == 1 {print substr($1, 2)}' {i:reads} > {o:ids}")
	extractIds.SetOut("ids", *outDir+"/read_ids.txt")
	extractIds.In("reads").From(basecall.Out("reads"))

	splitIds := wf.NewProc("split_ids",
		"split_reads "+*splitConfig+
			" && cp "+*trainIdsPath+" {o:train} && cp "+*evalIdsPath+" {o:eval} # {i:ids}")
	splitIds.SetOut("train", *outDir+"/train_ids.txt")
	splitIds.SetOut("eval", *outDir+"/eval_ids.txt")
	splitIds.In("ids").From(extractIds.Out("ids"))

	subsetTrain := wf.NewProc("subset_train",
		"subset_reads "+*trainSubsetConfig+
			" && cp "+*trainFastqPath+" {o:reads} # {i:ids} {i:reads}")
	subsetTrain.SetOut("reads", *outDir+"/train.fastq")
	subsetTrain.In("ids").From(splitIds.Out("train"))
	subsetTrain.In("reads").From(basecall.Out("reads"))

	subsetEval := wf.NewProc("subset_eval",
		"subset_reads "+*evalSubsetConfig+
			" && cp "+*evalFastqPath+" {o:reads} # {i:ids} {i:reads}")
	subsetEval.SetOut("reads", *outDir+"/eval.fastq")
	subsetEval.In("ids").From(splitIds.Out("eval"))
	subsetEval.In("reads").From(basecall.Out("reads"))

	train := wf.NewProc("train_model",
		"train_flipflop.py --device 0 --outdir {o:model} pretrained.checkpoint {i:reads}")
	train.SetOut("model", *outDir+"/model")
	train.In("reads").From(subsetTrain.Out("reads"))

	evaluate := wf.NewProc("evaluate_model",
		"guppy_basecaller -i "+*fast5Dir+" -s {o:calls} -m {i:model}/model_final.checkpoint"+
			" --read_id_list {i:ids}")
	evaluate.SetOut("calls", *outDir+"/eval_calls")
	evaluate.In("model").From(train.Out("model"))
	evaluate.In("ids").From(splitIds.Out("eval"))

	wf.Run()
}
