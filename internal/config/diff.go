package config

// StaticFieldChanges reports fields that differ between a running config and a
// freshly loaded one but only take effect on restart. Rule lists and the log
// level are applied live and never reported here.
func StaticFieldChanges(running, loaded *Config) []string {
	var changed []string
	if running.TickIntervalMs != loaded.TickIntervalMs {
		changed = append(changed, "tickIntervalMs")
	}
	if running.RefreshIntervalMs != loaded.RefreshIntervalMs {
		changed = append(changed, "refreshIntervalMs")
	}
	if running.TasksFile != loaded.TasksFile {
		changed = append(changed, "tasksFile")
	}
	if running.ControlSocket != loaded.ControlSocket {
		changed = append(changed, "controlSocket")
	}
	if running.MetricsListen != loaded.MetricsListen {
		changed = append(changed, "metricsListen")
	}
	return changed
}
