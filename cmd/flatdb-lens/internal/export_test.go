package common

var RunExitHooks = runExitHooks
