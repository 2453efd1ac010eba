package cmd

import "go.uber.org/fx"

var Module = fx.Module("cli",
	fx.Provide(
		fx.Annotate(classifyCmd, fx.ResultTags(`group:"commands"`)),
		fx.Annotate(fix, fx.ResultTags(`group:"commands"`)),
		fx.Annotate(patch, fx.ResultTags(`group:"commands"`)),
		fx.Annotate(rehash, fx.ResultTags(`group:"commands"`)),
		fx.Annotate(reorganize, fx.ResultTags(`group:"commands"`)),
	),
	fx.Invoke(Run),
)
