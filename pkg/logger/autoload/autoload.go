// Package autoload configures the global logger from the environment
// as a side effect of being imported.
package autoload

import (
	configx "github.com/tanpawarit/Marketa-Multi-Agent-Market-Intelligence/pkg/config"
	logx "github.com/tanpawarit/Marketa-Multi-Agent-Market-Intelligence/pkg/logger"
)

func init() {
	logx.Init(*configx.MustNew[logx.Config]("LOG"))
}
