package guard

import "testing"

// Exercises spec.md §8 scenario 4's InputParameters.TcpBlockedPorts usage
// through the public API end to end: EvalOptions.InputParameters must
// reach the evaluator, not just internal/decode.Merge in isolation.
func TestEvaluateWithInputParameters(t *testing.T) {
	rs, diags := Parse(`
let ports = InputParameters.TcpBlockedPorts[*];
rule portCheck when fromPort exists toPort exists {
	let ip = this;
	%ports { this < %ip.fromPort or this > %ip.toPort }
}
`)
	if len(diags) != 0 {
		t.Fatalf("Parse failed: %+v", diags)
	}

	data, err := ParseData([]byte(`{"fromPort":89,"toPort":109}`), JSON)
	if err != nil {
		t.Fatalf("ParseData failed: %v", err)
	}

	params, err := ParseData([]byte(`{"TcpBlockedPorts":[21,22,90,110]}`), JSON)
	if err != nil {
		t.Fatalf("ParseData failed: %v", err)
	}

	rpt, err := rs.Evaluate(data, EvalOptions{InputParameters: params})
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if rpt.Status != Fail {
		t.Fatalf("status = %v, want Fail (port 90 lies inside [89,109])", rpt.Status)
	}

	okParams, err := ParseData([]byte(`{"TcpBlockedPorts":[21,22,110]}`), JSON)
	if err != nil {
		t.Fatalf("ParseData failed: %v", err)
	}
	rpt, err = rs.Evaluate(data, EvalOptions{InputParameters: okParams})
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if rpt.Status != Pass {
		t.Fatalf("status = %v, want Pass", rpt.Status)
	}

	if _, err := rs.Evaluate(data); err != nil {
		t.Fatalf("Evaluate without opts should still work (InputParameters optional): %v", err)
	}
}
