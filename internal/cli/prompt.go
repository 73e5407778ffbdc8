package cli

import (
	"bufio"
	"fmt"
	"io"
	"net/url"
	"strings"
)

// prompter asks the init questions and reads one answer per line. Once
// input runs out every question takes its default, unless the last answer
// was rejected.
type prompter struct {
	in       *bufio.Scanner
	out      io.Writer
	rejected string
}

func newPrompter(in io.Reader, out io.Writer) *prompter {
	return &prompter{in: bufio.NewScanner(in), out: out}
}

// ask prints question and returns the trimmed answer. ok is false when
// input is exhausted.
func (p *prompter) ask(question string) (answer string, ok bool, err error) {
	fmt.Fprint(p.out, question)
	if p.in.Scan() {
		return strings.TrimSpace(p.in.Text()), true, nil
	}
	if err := p.in.Err(); err != nil {
		return "", false, fmt.Errorf("read answer: %w", err)
	}
	fmt.Fprintln(p.out)
	if p.rejected != "" {
		return "", false, fmt.Errorf("invalid answer %q", p.rejected)
	}
	return "", false, nil
}

// confirm asks a yes/no question.
func (p *prompter) confirm(question string, defaultYes bool) (bool, error) {
	hint := "y/N"
	if defaultYes {
		hint = "Y/n"
	}
	for {
		answer, ok, err := p.ask(fmt.Sprintf("%s [%s]: ", question, hint))
		if err != nil {
			return false, err
		}
		switch strings.ToLower(answer) {
		case "":
			p.rejected = ""
			return defaultYes, nil
		case "y", "yes":
			p.rejected = ""
			return true, nil
		case "n", "no":
			p.rejected = ""
			return false, nil
		}
		if !ok {
			return defaultYes, nil
		}
		p.rejected = answer
		fmt.Fprintln(p.out, "Please answer yes or no.")
	}
}

// serverURL asks for an http(s) base URL and strips trailing slashes.
func (p *prompter) serverURL(question, defaultURL string) (string, error) {
	for {
		answer, _, err := p.ask(fmt.Sprintf("%s [%s]: ", question, defaultURL))
		if err != nil {
			return "", err
		}
		if answer == "" {
			answer = defaultURL
		}
		if parsed, err := url.Parse(answer); err == nil && (parsed.Scheme == "http" || parsed.Scheme == "https") && parsed.Host != "" {
			p.rejected = ""
			return strings.TrimRight(answer, "/"), nil
		}
		p.rejected = answer
		fmt.Fprintf(p.out, "%q is not an http(s) URL.\n", answer)
	}
}
