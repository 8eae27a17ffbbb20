/*
Package runner drives a controller at a fixed period and ships each cycle's
snapshot to the configured publishers.

Publishing happens after the controller's cycle returns, so slow telemetry
backends delay the next cycle at worst and never run inside goal dispatch.

# Usage

	r := runner.NewRunner(robot,
		runner.WithPeriod(20*time.Millisecond),
		runner.WithPublishers(redisPublisher),
		runner.WithLogger(logger),
	)

	if err := r.Run(ctx); err != nil {
		log.Fatal(err)
	}
*/
package runner
