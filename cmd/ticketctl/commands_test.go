package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func writeTicketWorkbook(t *testing.T, extra ...[]interface{}) string {
	t.Helper()

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	rows := [][]interface{}{
		{"ID", "Solicitante", "Solicitado em", "Categoria", "Prioridade", "Status", "Tempo decorrido", "Tempo decorrido números", "MÉDIA"},
		{1, "Ana", "2024-01-05 09:30:00", "Rede", "Alta", "Fechado", "2 horas e 30 minutos", "2:30:00", ""},
		{2, "Bruno", "2024-02-10 14:00:00", "Acesso", "Baixa", "Aberto", "1 dia e 6 horas", 30, ""},
	}
	rows = append(rows, extra...)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		values := row
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &values))
	}

	path := filepath.Join(t.TempDir(), "geoti_sla.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestSummaryCmd(t *testing.T) {
	path := writeTicketWorkbook(t)

	t.Run("whole dataset", func(t *testing.T) {
		out, err := runCmd(t, "summary", "--file", path)
		require.NoError(t, err)

		assert.Contains(t, out, "Tickets:        2 of 2")
		assert.Contains(t, out, "Mean:           16.25h")
		assert.Contains(t, out, "Within 24.00h:  50.0%")
		assert.Contains(t, out, "Rede")
		assert.Contains(t, out, "Acesso")
	})

	t.Run("filtered by category", func(t *testing.T) {
		out, err := runCmd(t, "summary", "--file", path, "--category", "Rede")
		require.NoError(t, err)

		assert.Contains(t, out, "Tickets:        1 of 2")
		assert.Contains(t, out, "Within 24.00h:  100.0%")
	})

	t.Run("no match", func(t *testing.T) {
		out, err := runCmd(t, "summary", "--file", path, "--status", "Cancelado")
		require.NoError(t, err)

		assert.Contains(t, out, "No tickets match the selection (2 in dataset).")
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := runCmd(t, "summary", "--file", filepath.Join(t.TempDir(), "absent.xlsx"))
		assert.Error(t, err)
	})
}

func TestSummaryCmd_CategoryWithComma(t *testing.T) {
	path := writeTicketWorkbook(t,
		[]interface{}{3, "Caio", "2024-02-12 08:00:00", "Hardware, Periféricos", "Média", "Fechado", "4 horas", 4, ""},
	)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{name: "single label", args: []string{"--category", "Hardware, Periféricos"}, want: "Tickets:        1 of 3"},
		{name: "repeated flag", args: []string{"--category", "Rede", "--category", "Hardware, Periféricos"}, want: "Tickets:        2 of 3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := runCmd(t, append([]string{"summary", "--file", path}, tt.args...)...)
			require.NoError(t, err)
			assert.Contains(t, out, tt.want)
		})
	}
}

func TestMonthlyCmd(t *testing.T) {
	out, err := runCmd(t, "monthly", "--file", writeTicketWorkbook(t))
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[0], "Month"))
	assert.Contains(t, lines[2], "Janeiro")
	assert.Contains(t, lines[2], "2.50")
	assert.Contains(t, lines[3], "Fevereiro")
	assert.Contains(t, lines[3], "30.00")
}

func TestExportCmd(t *testing.T) {
	path := writeTicketWorkbook(t)

	t.Run("stdout", func(t *testing.T) {
		out, err := runCmd(t, "export", "--file", path, "-o", "-", "--priority", "Baixa")
		require.NoError(t, err)

		lines := strings.Split(strings.TrimSpace(out), "\n")
		require.Len(t, lines, 2)
		assert.True(t, strings.HasPrefix(lines[1], "2,Bruno,"))
	})

	t.Run("file", func(t *testing.T) {
		target := filepath.Join(t.TempDir(), "dados_sla.csv")
		_, err := runCmd(t, "export", "--file", path, "-o", target)
		require.NoError(t, err)

		data, err := os.ReadFile(target)
		require.NoError(t, err)
		assert.Equal(t, 3, strings.Count(string(data), "\n"))
	})
}

func TestImportCmd_RequiresDatabase(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	_, err := runCmd(t, "import", "--file", writeTicketWorkbook(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL")
}
