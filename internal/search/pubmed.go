// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/meshintelligence/primer-engine/pkg/types"
)

// NCBI E-utilities endpoints. Declared as vars so tests can substitute
// httptest servers.
var (
	pubmedESearchBase = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils/esearch.fcgi"
	pubmedEFetchBase  = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils/efetch.fcgi"
)

// pubmedArticleBase is the landing-page prefix for canonical record URLs.
const pubmedArticleBase = "https://pubmed.ncbi.nlm.nih.gov/"

// PubMedBackend queries the NCBI E-utilities API, the secondary catalog
// for biomedical-adjacent fields. The protocol is two-step: esearch
// returns a PMID list, efetch returns the article XML for those PMIDs.
type PubMedBackend struct {
	Client *http.Client
	APIKey string
}

// Name returns the backend identifier.
func (b *PubMedBackend) Name() string { return "pubmed" }

// Search runs the esearch/efetch pair for one query. A failure at either
// step fails the whole query; missing or malformed nodes within an
// article are treated as absent fields, never fatal.
func (b *PubMedBackend) Search(ctx context.Context, query string, cfg types.SearchConfig) ([]types.Record, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("empty PubMed query")
	}

	limit := cfg.PubMedLimit
	if limit <= 0 {
		limit = 25
	}

	ids, err := b.searchIDs(ctx, query, limit, cfg)
	if err != nil {
		return nil, fmt.Errorf("PubMed esearch: %w", err)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	records, err := b.fetchArticles(ctx, ids, cfg)
	if err != nil {
		return nil, fmt.Errorf("PubMed efetch: %w", err)
	}
	return records, nil
}

// searchIDs runs the esearch call and returns the matching PMIDs.
func (b *PubMedBackend) searchIDs(ctx context.Context, query string, limit int, cfg types.SearchConfig) ([]string, error) {
	params := url.Values{
		"db":      {"pubmed"},
		"term":    {query},
		"retmax":  {strconv.Itoa(limit)},
		"retmode": {"json"},
	}
	if b.APIKey != "" {
		params.Set("api_key", b.APIKey)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pubmedESearchBase+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", cfg.UserAgent)

	resp, err := b.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d", resp.StatusCode)
	}

	var es esearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&es); err != nil {
		return nil, fmt.Errorf("parsing response: %w", err)
	}
	return es.Result.IDList, nil
}

// fetchArticles runs the efetch call for the given PMIDs and parses the
// returned XML document into Records.
func (b *PubMedBackend) fetchArticles(ctx context.Context, ids []string, cfg types.SearchConfig) ([]types.Record, error) {
	params := url.Values{
		"db":      {"pubmed"},
		"id":      {strings.Join(ids, ",")},
		"rettype": {"abstract"},
		"retmode": {"xml"},
	}
	if b.APIKey != "" {
		params.Set("api_key", b.APIKey)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pubmedEFetchBase+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", cfg.UserAgent)

	resp, err := b.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d", resp.StatusCode)
	}

	var set pubmedArticleSet
	if err := xml.NewDecoder(resp.Body).Decode(&set); err != nil {
		return nil, fmt.Errorf("parsing response: %w", err)
	}

	var records []types.Record
	for _, article := range set.Articles {
		if r, ok := parsePubMedArticle(article); ok {
			records = append(records, r)
		}
	}
	return records, nil
}

// parsePubMedArticle converts one PubmedArticle node into a Record.
// Articles without a title are dropped. PubMed reports no citation
// counts; those fields stay zero.
func parsePubMedArticle(article pubmedArticle) (types.Record, bool) {
	art := article.MedlineCitation.Article

	title := strings.TrimSpace(art.Title)
	if title == "" {
		return types.Record{}, false
	}

	// Structured abstracts arrive as labeled fragments; keep the labels so
	// downstream text retains the section structure.
	var parts []string
	for _, frag := range art.Abstract.Texts {
		text := strings.TrimSpace(frag.Text)
		if frag.Label != "" {
			parts = append(parts, frag.Label+": "+text)
		} else if text != "" {
			parts = append(parts, text)
		}
	}

	r := types.Record{
		Title:    title,
		Abstract: strings.Join(parts, " "),
		Venue:    art.Journal.Title,
		SourceID: article.MedlineCitation.PMID,
		Source:   "pubmed",
	}
	if r.Venue == "" {
		r.Venue = art.Journal.ISOAbbreviation
	}

	for _, a := range art.AuthorList.Authors {
		name := strings.TrimSpace(a.ForeName + " " + a.LastName)
		if name != "" {
			r.Authors = append(r.Authors, name)
		}
	}

	if y, err := strconv.Atoi(art.Journal.JournalIssue.PubDate.Year); err == nil {
		r.Year = y
	} else if md := art.Journal.JournalIssue.PubDate.MedlineDate; len(md) >= 4 {
		if y, err := strconv.Atoi(md[:4]); err == nil {
			r.Year = y
		}
	}

	for _, id := range article.PubmedData.ArticleIDs {
		if id.IDType == "doi" {
			r.DOI = strings.TrimSpace(id.Value)
			break
		}
	}

	if r.SourceID != "" {
		r.URL = pubmedArticleBase + r.SourceID + "/"
	}
	return r, true
}

// esearch JSON structures.
type esearchResponse struct {
	Result esearchResult `json:"esearchresult"`
}

type esearchResult struct {
	IDList []string `json:"idlist"`
}

// efetch XML structures.
type pubmedArticleSet struct {
	Articles []pubmedArticle `xml:"PubmedArticle"`
}

type pubmedArticle struct {
	MedlineCitation struct {
		PMID    string            `xml:"PMID"`
		Article pubmedArticleNode `xml:"Article"`
	} `xml:"MedlineCitation"`
	PubmedData struct {
		ArticleIDs []pubmedArticleID `xml:"ArticleIdList>ArticleId"`
	} `xml:"PubmedData"`
}

type pubmedArticleNode struct {
	Title    string `xml:"ArticleTitle"`
	Abstract struct {
		Texts []pubmedAbstractText `xml:"AbstractText"`
	} `xml:"Abstract"`
	AuthorList struct {
		Authors []pubmedAuthor `xml:"Author"`
	} `xml:"AuthorList"`
	Journal struct {
		Title           string `xml:"Title"`
		ISOAbbreviation string `xml:"ISOAbbreviation"`
		JournalIssue    struct {
			PubDate struct {
				Year        string `xml:"Year"`
				MedlineDate string `xml:"MedlineDate"`
			} `xml:"PubDate"`
		} `xml:"JournalIssue"`
	} `xml:"Journal"`
}

type pubmedAbstractText struct {
	Label string `xml:"Label,attr"`
	Text  string `xml:",chardata"`
}

type pubmedAuthor struct {
	LastName string `xml:"LastName"`
	ForeName string `xml:"ForeName"`
}

type pubmedArticleID struct {
	IDType string `xml:"IdType,attr"`
	Value  string `xml:",chardata"`
}
