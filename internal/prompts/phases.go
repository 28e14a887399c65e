package prompts

func init() {
	registry := DefaultRegistry()

	registry.Register(&Prompt{
		ID:      "phase/analyze",
		Version: PromptV1,
		Content: `CURRENT PHASE: ANALYZE

You are investigating a failing repository{{#if repository}} ({{repository}}){{/if}}. Do not modify code yet.

Goals for this phase:
- Understand the reported failure and locate the code paths involved.
- Find the tests that demonstrate the bug{{#if test_runner}} using the project runner: {{test_runner}}{{/if}}.
- Run the failing tests at least once to observe the actual error.
{{#if has_run_tests}}
You have already reproduced a test run. Focus on narrowing the root cause before editing.
{{else}}
You have NOT run any tests yet. Reproduce the failure first; a fix you cannot verify is a guess.
{{/if}}{{#if examples}}
Known-good test invocations for this repository:
{{examples}}
{{/if}}
Progress so far: {{read_calls}} file reads, {{tests_run}} test runs.`,
		Description: "Default guidance for the analysis phase",
		Tags:        []string{"phase", "analyze"},
	})

	registry.Register(&Prompt{
		ID:      "phase/modify",
		Version: PromptV1,
		Content: `CURRENT PHASE: MODIFY

You have reproduced the failure; now fix it.

Rules for this phase:
- Make SMALL, focused edits; one logical change per patch.
- Re-read the exact region before patching it.
- After each edit, run the failing tests to check the direction of travel.
{{#if modified_files}}
Files modified so far: {{modified_files}}
{{else}}
No files modified yet. Start with the smallest change that could fix the root cause.
{{/if}}
Verification requires {{remaining_commands}} more test command(s) after your first modification before completion is allowed.`,
		Description: "Default guidance for the modification phase",
		Tags:        []string{"phase", "modify"},
	})

	registry.Register(&Prompt{
		ID:      "phase/verify",
		Version: PromptV1,
		Content: `CURRENT PHASE: VERIFY

Your modification is in place; prove it is correct and complete.

Checklist:
1. Inspect the final diff of every modified file.
2. Review the change for behaviour, edge cases, and regressions.
3. Run the originally failing tests (FAIL_TO_PASS) and confirm they pass.
4. Run the surrounding suite (PASS_TO_PASS) and confirm nothing broke.
5. Read the full test logs, not just the exit status.
{{#if tests_passed_after_modify}}
Tests have passed since your modification. Double-check the broader suite, then complete.
{{else}}
Tests have not yet passed since your modification. Do not attempt completion until they do.
{{/if}}`,
		Description: "Default guidance for the verification phase",
		Tags:        []string{"phase", "verify"},
	})

	// Django's runner has its own invocation shape; the override keeps the
	// analyze guidance from suggesting bare pytest.
	registry.Register(&Prompt{
		ID:      "phase/analyze@django/django",
		Version: PromptV1,
		Content: `CURRENT PHASE: ANALYZE

This is the django/django repository. Tests run through the bundled runner, not pytest:

    ./tests/runtests.py <test_label> [-v 2]

Test labels are dotted module paths under tests/, e.g. "urlpatterns_reverse" or
"auth_tests.test_views".

Goals for this phase:
- Locate the failing behaviour and the app(s) it lives in.
- Find the matching test label and run it to observe the failure.
{{#if has_run_tests}}
You have reproduced a run. Narrow the root cause before editing.
{{else}}
You have NOT run any tests yet. Reproduce with runtests.py before modifying anything.
{{/if}}
Progress so far: {{read_calls}} file reads, {{tests_run}} test runs.`,
		Description: "Analyze-phase guidance specialised for Django's test runner",
		Tags:        []string{"phase", "analyze", "django"},
	})
}
