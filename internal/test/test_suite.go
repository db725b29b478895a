// Command-line probe that smoke-tests the API, then fires concurrent partial
// updates at a single post to show the last-write-wins behavior of updates.
// Results land in CSV + HTML reports.
package main

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"os"
	"sync"
	"time"
)

var baseURL = envOr("PROBE_BASE_URL", "http://127.0.0.1:8080")

var client = &http.Client{Timeout: 10 * time.Second}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// updateResult 汇总一次并发更新的结果，方便折叠到报告内。
type updateResult struct {
	Writer     string
	StatusCode int
	Won        bool
	ErrMessage string
	Timestamp  time.Time
}

// ======================= 基本 HTTP helper =======================

// doPostJSON is a thin helper that serializes a JSON body and sends a POST request.
func doPostJSON(url string, body any, token string) (int, []byte, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return 0, nil, err
	}
	req, _ := http.NewRequest("POST", url, bytes.NewBuffer(data))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()
	out, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, out, nil
}

// doForm sends a multipart form request, matching how post endpoints are consumed.
func doForm(method, url, token string, fields map[string]string) (int, []byte, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		_ = w.WriteField(k, v)
	}
	_ = w.Close()
	req, _ := http.NewRequest(method, url, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()
	out, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, out, nil
}

func doGet(url string) (int, []byte, error) {
	resp, err := client.Get(url)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()
	out, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, out, nil
}

// ======================= 注册 / 登录 / 发帖 Helpers =======================

func signup(username, email, password string) (string, error) {
	body := map[string]string{"username": username, "email": email, "password": password}
	status, data, err := doPostJSON(baseURL+"/auth/signup", body, "")
	if err != nil {
		return "", err
	}
	if status != 200 {
		return "", fmt.Errorf("signup status %d body=%s", status, data)
	}
	var res struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(data, &res); err != nil {
		return "", err
	}
	return res.Token, nil
}

func login(email, password string) (string, error) {
	body := map[string]string{"email": email, "password": password}
	status, data, err := doPostJSON(baseURL+"/auth/login", body, "")
	if err != nil {
		return "", err
	}
	if status != 200 {
		return "", fmt.Errorf("login status %d body=%s", status, data)
	}
	var res struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(data, &res); err != nil {
		return "", err
	}
	return res.Token, nil
}

func createPost(token, title, content string) (uint64, error) {
	status, data, err := doForm("POST", baseURL+"/posts", token, map[string]string{
		"title": title, "content": content,
	})
	if err != nil {
		return 0, err
	}
	if status != 200 {
		return 0, fmt.Errorf("create post status %d body=%s", status, data)
	}
	var post struct {
		ID uint64 `json:"id"`
	}
	if err := json.Unmarshal(data, &post); err != nil {
		return 0, err
	}
	return post.ID, nil
}

func getPostContent(id uint64) (string, error) {
	status, data, err := doGet(fmt.Sprintf("%s/posts/%d", baseURL, id))
	if err != nil {
		return "", err
	}
	if status != 200 {
		return "", fmt.Errorf("get post status %d", status)
	}
	var post struct {
		Content string `json:"content"`
	}
	if err := json.Unmarshal(data, &post); err != nil {
		return "", err
	}
	return post.Content, nil
}

// ======================= 基础功能连通性测试 =======================

// endpointSmokeTests exercises signup/login/post endpoints with positive and negative cases.
func endpointSmokeTests() error {
	suffix := time.Now().UnixNano() % 1000000
	username := fmt.Sprintf("smoke_%d", suffix)
	email := fmt.Sprintf("smoke_%d@example.com", suffix)
	password := "SmokePwd123!"

	token, err := signup(username, email, password)
	if err != nil {
		return fmt.Errorf("signup (new) failed: %w", err)
	}

	// Duplicate signup should conflict (409).
	if status, _, err := doPostJSON(baseURL+"/auth/signup",
		map[string]string{"username": username, "email": email, "password": password}, ""); err != nil || status != http.StatusConflict {
		return fmt.Errorf("signup (duplicate) expected 409, got %d err=%v", status, err)
	}

	if _, err := login(email, password); err != nil {
		return fmt.Errorf("login (valid) failed: %w", err)
	}

	// Wrong password rejected without leaking whether the account exists.
	if status, _, err := doPostJSON(baseURL+"/auth/login",
		map[string]string{"email": email, "password": "wrong-password"}, ""); err != nil || status != http.StatusBadRequest {
		return fmt.Errorf("login (invalid creds) expected 400, got %d err=%v", status, err)
	}

	id, err := createPost(token, "smoke", "smoke content")
	if err != nil {
		return fmt.Errorf("create post failed: %w", err)
	}

	// Mutation without a token rejected.
	if status, _, err := doForm("PUT", fmt.Sprintf("%s/posts/%d", baseURL, id), "",
		map[string]string{"title": "nope"}); err != nil || status != http.StatusUnauthorized {
		return fmt.Errorf("unauthenticated update expected 401, got %d err=%v", status, err)
	}

	log.Println("endpoint smoke tests passed: signup/login/post basic scenarios verified")
	return nil
}

// ======================= 并发更新测试与报告生成 =======================

// concurrentUpdateTest fires `writers` concurrent partial updates at one post
// and reports which write survived. There is no optimistic lock on posts, so
// the survivor is simply whichever request committed last.
func concurrentUpdateTest(writers int, outCSV, outHTML string) error {
	suffix := time.Now().UnixNano() % 1000000
	token, err := signup(
		fmt.Sprintf("race_%d", suffix),
		fmt.Sprintf("race_%d@example.com", suffix),
		"RacePwd123!",
	)
	if err != nil {
		return fmt.Errorf("signup failed: %w", err)
	}

	postID, err := createPost(token, "race target", "initial")
	if err != nil {
		return fmt.Errorf("create post failed: %w", err)
	}

	var wg sync.WaitGroup
	resCh := make(chan updateResult, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			writer := fmt.Sprintf("writer-%d", i)
			status, _, err := doForm("PUT", fmt.Sprintf("%s/posts/%d", baseURL, postID), token,
				map[string]string{"content": writer})
			res := updateResult{Writer: writer, StatusCode: status, Timestamp: time.Now()}
			if err != nil {
				res.ErrMessage = err.Error()
			}
			resCh <- res
		}(i)
	}
	wg.Wait()
	close(resCh)

	survivor, err := getPostContent(postID)
	if err != nil {
		return fmt.Errorf("read back failed: %w", err)
	}

	var allResults []updateResult
	for r := range resCh {
		r.Won = r.Writer == survivor
		allResults = append(allResults, r)
	}

	if err := writeCSVReport(outCSV, allResults); err != nil {
		return err
	}
	if err := writeHTMLReport(outHTML, survivor, allResults); err != nil {
		log.Printf("write HTML report error: %v", err)
	}

	log.Printf("concurrent update test done: %d writers, survivor=%q (last write wins)", writers, survivor)
	return nil
}

func writeCSVReport(path string, results []updateResult) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	w := csv.NewWriter(f)
	defer w.Flush()
	_ = w.Write([]string{"Writer", "StatusCode", "Won", "ErrMessage", "Timestamp"})
	for _, r := range results {
		_ = w.Write([]string{
			r.Writer,
			fmt.Sprintf("%d", r.StatusCode),
			fmt.Sprintf("%t", r.Won),
			r.ErrMessage,
			r.Timestamp.Format(time.RFC3339Nano),
		})
	}
	return nil
}

// writeHTMLReport renders a basic table so the surviving write is easy to eyeball.
func writeHTMLReport(path, survivor string, results []updateResult) error {
	const tpl = `
<!doctype html>
<html>
<head><meta charset="utf-8"><title>Concurrent Update Report</title>
<style>
table { border-collapse: collapse; width: 100%; }
th, td { border: 1px solid #ddd; padding: 8px; text-align:left }
th { background: #f4f4f4; }
.won { color: green; font-weight: bold; }
</style>
</head>
<body>
<h2>Concurrent Update Report ({{ .GeneratedAt }})</h2>
<p>Surviving content: <span class="won">{{ .Survivor }}</span> — updates are last-write-wins, no optimistic lock.</p>
<table>
<thead><tr><th>Writer</th><th>Status</th><th>Won</th><th>Error</th><th>Timestamp</th></tr></thead>
<tbody>
{{ range .Rows }}
<tr>
<td>{{ .Writer }}</td>
<td>{{ .StatusCode }}</td>
<td>{{ if .Won }}<span class="won">yes</span>{{ else }}no{{ end }}</td>
<td>{{ .ErrMessage }}</td>
<td>{{ .Timestamp }}</td>
</tr>
{{ end }}
</tbody>
</table>
</body>
</html>`

	data := struct {
		GeneratedAt string
		Survivor    string
		Rows        []updateResult
	}{
		GeneratedAt: time.Now().Format(time.RFC3339),
		Survivor:    survivor,
		Rows:        results,
	}

	t, err := template.New("report").Parse(tpl)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return t.Execute(f, data)
}

// ======================= main =======================

func main() {
	writers := 10
	outCSV := "update_race_report.csv"
	outHTML := "update_race_report.html"

	if err := endpointSmokeTests(); err != nil {
		log.Fatalf("endpoint smoke tests failed: %v", err)
	}

	start := time.Now()
	if err := concurrentUpdateTest(writers, outCSV, outHTML); err != nil {
		log.Fatalf("concurrent update test failed: %v", err)
	}
	log.Printf("probe finished in %s, CSV=%s HTML=%s", time.Since(start), outCSV, outHTML)
}
