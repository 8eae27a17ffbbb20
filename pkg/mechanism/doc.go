// Package mechanism provides simulated leaf mechanisms that satisfy the
// interfaces in package ports. They model just enough physics (rate-limited
// motion, roller voltages) to exercise the coordinators end to end without
// hardware.
package mechanism
